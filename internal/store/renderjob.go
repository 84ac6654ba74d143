// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"magazinecore/internal/models"
)

// RenderJobStore handles render job database operations.
type RenderJobStore struct {
	db *sql.DB
}

// NewRenderJobStore creates a new RenderJobStore with the given database connection.
func NewRenderJobStore(db *sql.DB) *RenderJobStore {
	return &RenderJobStore{db: db}
}

// Create inserts a new render job in queued status. renderer selects which
// path the supervisor should take for this job; an empty value defaults to
// RendererPagedPrimary (the column's own DEFAULT).
func (s *RenderJobStore) Create(issueID, packID string, renderer models.RendererSelector) (*models.RenderJob, error) {
	if renderer == "" {
		renderer = models.RendererPagedPrimary
	}
	j := &models.RenderJob{}
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO render_jobs (issue_id, pack_id, renderer)
		VALUES ($1, $2, $3)
		RETURNING id, issue_id, pack_id, renderer, status, progress, artifact_url, error_message,
		          warnings, decision, created_at, started_at, completed_at
	`, issueID, packID, renderer).Scan(
		&id, &j.IssueID, &j.TemplatePackID, &j.Renderer, &j.Status, &j.Progress, &j.ArtifactURL, &j.ErrorMessage,
		pgTextArrayScan(&j.Warnings), decisionScanner{&j.Decision}, &j.CreatedAt, &j.StartedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create render job: %w", err)
	}
	j.ID = id.String()
	return j, nil
}

// FindByID retrieves a render job by its UUID. Returns nil if not found.
func (s *RenderJobStore) FindByID(id string) (*models.RenderJob, error) {
	j := &models.RenderJob{}
	var rowID uuid.UUID
	err := s.db.QueryRow(`
		SELECT id, issue_id, pack_id, renderer, status, progress, artifact_url, error_message,
		       warnings, decision, created_at, started_at, completed_at
		FROM render_jobs WHERE id = $1
	`, id).Scan(
		&rowID, &j.IssueID, &j.TemplatePackID, &j.Renderer, &j.Status, &j.Progress, &j.ArtifactURL, &j.ErrorMessage,
		pgTextArrayScan(&j.Warnings), decisionScanner{&j.Decision}, &j.CreatedAt, &j.StartedAt, &j.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find render job by id: %w", err)
	}
	j.ID = rowID.String()
	return j, nil
}

// ListQueued returns jobs waiting to be picked up by the supervisor, oldest first.
func (s *RenderJobStore) ListQueued() ([]*models.RenderJob, error) {
	rows, err := s.db.Query(`
		SELECT id, issue_id, pack_id, renderer, status, progress, artifact_url, error_message,
		       warnings, decision, created_at, started_at, completed_at
		FROM render_jobs WHERE status = 'queued' ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list queued render jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.RenderJob
	for rows.Next() {
		j := &models.RenderJob{}
		var rowID uuid.UUID
		if err := rows.Scan(
			&rowID, &j.IssueID, &j.TemplatePackID, &j.Renderer, &j.Status, &j.Progress, &j.ArtifactURL, &j.ErrorMessage,
			pgTextArrayScan(&j.Warnings), decisionScanner{&j.Decision}, &j.CreatedAt, &j.StartedAt, &j.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan render job: %w", err)
		}
		j.ID = rowID.String()
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ListRecent returns the most recently created jobs, newest first, for
// dashboard display.
func (s *RenderJobStore) ListRecent(limit int) ([]*models.RenderJob, error) {
	rows, err := s.db.Query(`
		SELECT id, issue_id, pack_id, renderer, status, progress, artifact_url, error_message,
		       warnings, decision, created_at, started_at, completed_at
		FROM render_jobs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent render jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.RenderJob
	for rows.Next() {
		j := &models.RenderJob{}
		var rowID uuid.UUID
		if err := rows.Scan(
			&rowID, &j.IssueID, &j.TemplatePackID, &j.Renderer, &j.Status, &j.Progress, &j.ArtifactURL, &j.ErrorMessage,
			pgTextArrayScan(&j.Warnings), decisionScanner{&j.Decision}, &j.CreatedAt, &j.StartedAt, &j.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan render job: %w", err)
		}
		j.ID = rowID.String()
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CountByStatus returns the number of jobs currently in the given status,
// used to populate the dashboard's summary cards.
func (s *RenderJobStore) CountByStatus(status models.JobStatus) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM render_jobs WHERE status = $1`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count render jobs by status: %w", err)
	}
	return n, nil
}

// UpdateProgress advances a job's progress percentage and status, used by
// the supervisor's fixed checkpoint schedule.
func (s *RenderJobStore) UpdateProgress(id string, status models.JobStatus, progress int) error {
	_, err := s.db.Exec(`
		UPDATE render_jobs SET status = $1, progress = $2,
		       started_at = COALESCE(started_at, CASE WHEN $1 = 'processing' THEN NOW() END)
		WHERE id = $3
	`, status, progress, id)
	if err != nil {
		return fmt.Errorf("update render job progress: %w", err)
	}
	return nil
}

// MarkCompleted finalizes a job with its artifact location, warnings and decision summary.
func (s *RenderJobStore) MarkCompleted(id, artifactURL string, warnings []string, decision *models.DecisionSummary) error {
	decisionRaw, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("marshal decision summary: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE render_jobs
		SET status = 'completed', progress = 100, artifact_url = $1, warnings = $2, decision = $3,
		    completed_at = NOW()
		WHERE id = $4
	`, artifactURL, pgTextArray(warnings), decisionRaw, id)
	if err != nil {
		return fmt.Errorf("mark render job completed: %w", err)
	}
	return nil
}

// MarkFailed finalizes a job with an error message.
func (s *RenderJobStore) MarkFailed(id, errMsg string) error {
	_, err := s.db.Exec(`
		UPDATE render_jobs SET status = 'failed', error_message = $1, completed_at = NOW() WHERE id = $2
	`, errMsg, id)
	if err != nil {
		return fmt.Errorf("mark render job failed: %w", err)
	}
	return nil
}

// decisionScanner bridges the nullable decision JSONB column to
// *models.DecisionSummary, leaving it nil when the column is NULL.
type decisionScanner struct {
	dst **models.DecisionSummary
}

func (d decisionScanner) Scan(src any) error {
	if src == nil {
		*d.dst = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("decisionScanner: unsupported scan source %T", src)
	}
	summary := &models.DecisionSummary{}
	if err := json.Unmarshal(raw, summary); err != nil {
		return fmt.Errorf("unmarshal decision summary: %w", err)
	}
	*d.dst = summary
	return nil
}
