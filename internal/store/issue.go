// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"magazinecore/internal/models"
)

// IssueStore handles issue database operations.
type IssueStore struct {
	db *sql.DB
}

// NewIssueStore creates a new IssueStore with the given database connection.
func NewIssueStore(db *sql.DB) *IssueStore {
	return &IssueStore{db: db}
}

// Create inserts a new issue in draft status.
func (s *IssueStore) Create(issue *models.Issue) (*models.Issue, error) {
	i := &models.Issue{}
	err := s.db.QueryRow(`
		INSERT INTO issues (id, title, publish_date, sections, status)
		VALUES ($1, $2, $3, $4, 'draft')
		RETURNING id, title, publish_date, sections, status, created_at, updated_at
	`, issue.ID, issue.Title, issue.PublishDate, pgTextArray(issue.Sections)).Scan(
		&i.ID, &i.Title, &i.PublishDate, pgTextArrayScan(&i.Sections), &i.Status, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	return i, nil
}

// FindByID retrieves an issue by ID. Returns nil if not found.
func (s *IssueStore) FindByID(id string) (*models.Issue, error) {
	i := &models.Issue{}
	err := s.db.QueryRow(`
		SELECT id, title, publish_date, sections, status, created_at, updated_at
		FROM issues WHERE id = $1
	`, id).Scan(
		&i.ID, &i.Title, &i.PublishDate, pgTextArrayScan(&i.Sections), &i.Status, &i.CreatedAt, &i.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find issue by id: %w", err)
	}
	return i, nil
}

// List returns all issues ordered by publish date, most recent first.
func (s *IssueStore) List() ([]*models.Issue, error) {
	rows, err := s.db.Query(`
		SELECT id, title, publish_date, sections, status, created_at, updated_at
		FROM issues ORDER BY publish_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		i := &models.Issue{}
		if err := rows.Scan(
			&i.ID, &i.Title, &i.PublishDate, pgTextArrayScan(&i.Sections), &i.Status, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

// ListByStatus returns all issues with the given status.
func (s *IssueStore) ListByStatus(status models.IssueStatus) ([]*models.Issue, error) {
	rows, err := s.db.Query(`
		SELECT id, title, publish_date, sections, status, created_at, updated_at
		FROM issues WHERE status = $1 ORDER BY publish_date DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("list issues by status: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		i := &models.Issue{}
		if err := rows.Scan(
			&i.ID, &i.Title, &i.PublishDate, pgTextArrayScan(&i.Sections), &i.Status, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

// UpdateStatus transitions an issue to a new status.
func (s *IssueStore) UpdateStatus(id string, status models.IssueStatus) error {
	_, err := s.db.Exec(`
		UPDATE issues SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("update issue status: %w", err)
	}
	return nil
}

// Delete removes an issue and (via FK cascade) its articles and images.
func (s *IssueStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	return nil
}
