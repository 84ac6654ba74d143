package handlers

import "strings"

// validateJobSubmit checks a render job submission form and returns the
// first error found, or "" if the input is acceptable.
func validateJobSubmit(issueID, packID string) string {
	if strings.TrimSpace(issueID) == "" {
		return "issue_id is required."
	}
	if strings.TrimSpace(packID) == "" {
		return "pack_id is required."
	}
	return ""
}
