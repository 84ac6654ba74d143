// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// RendererSelector picks which render path a job should take.
type RendererSelector string

const (
	RendererPagedPrimary RendererSelector = "paged_primary"
	RendererHTMLFallback RendererSelector = "html_fallback"
)

// JobStatus is the render job's state-machine position.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// DecisionSummary is a compact, dashboard-friendly projection of one
// LayoutDecision, embedded on the job row. The job stores the summary
// for its primary article (the first in composition order); the full
// per-article list lives in GeneratedTemplate.Metadata instead.
type DecisionSummary struct {
	FontSize float64  `json:"font_size"`
	Columns  int      `json:"column_count"`
	Score    float64  `json:"score"`
	Warnings []string `json:"warnings"`
}

// RenderJob drives one issue+pack combination through the pipeline.
// Mutated only by the render job supervisor.
type RenderJob struct {
	ID             string
	IssueID        string
	TemplatePackID string
	Renderer       RendererSelector
	Status         JobStatus
	Progress       int
	ArtifactURL    *string
	ErrorMessage   *string
	Warnings       []string
	Decision       *DecisionSummary
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// IsTerminal reports whether the job has reached a state from which it
// cannot transition further.
func (j *RenderJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
