package handlers

import "testing"

func TestValidateJobSubmit(t *testing.T) {
	tests := []struct {
		name      string
		issueID   string
		packID    string
		wantError bool
	}{
		{"valid", "issue-1", "modern-pack", false},
		{"empty issue id", "", "modern-pack", true},
		{"whitespace issue id", "   ", "modern-pack", true},
		{"empty pack id", "issue-1", "", true},
		{"whitespace pack id", "issue-1", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validateJobSubmit(tt.issueID, tt.packID)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}
