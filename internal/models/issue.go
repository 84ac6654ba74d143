// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// IssueStatus tracks an issue's position in the publishing pipeline.
type IssueStatus string

const (
	IssueStatusDraft      IssueStatus = "draft"
	IssueStatusProcessing IssueStatus = "processing"
	IssueStatusCompleted  IssueStatus = "completed"
	IssueStatusFailed     IssueStatus = "failed"
)

// Issue is a single magazine issue: metadata plus the ordered section
// names articles are grouped under. Created by intake; its Status is
// mutated only by the render job supervisor, its metadata only by intake.
type Issue struct {
	ID          string
	Title       string
	PublishDate time.Time
	Sections    []string
	Status      IssueStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasSection reports whether name is one of the issue's declared sections.
func (i *Issue) HasSection(name string) bool {
	for _, s := range i.Sections {
		if s == name {
			return true
		}
	}
	return false
}
