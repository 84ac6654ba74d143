// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"magazinecore/internal/models"
	"magazinecore/internal/slug"
)

// ArticleStore handles article database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// Create inserts a new article under an issue. If a.ArticleID is empty,
// one is derived from the title so intake never needs to hand-craft a
// slug for the common case.
func (s *ArticleStore) Create(a *models.Article) (*models.Article, error) {
	if a.ArticleID == "" {
		a.ArticleID = slug.Generate(a.Title)
	}

	out := &models.Article{}
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO articles (issue_id, article_id, section, type, title, dek, author, body_html, body_format)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, issue_id, article_id, section, type, title, dek, author, body_html, body_format, created_at
	`, a.IssueID, a.ArticleID, a.Section, a.Type, a.Title, a.Dek, a.Author, a.BodyHTML, a.BodyFormat).Scan(
		&id, &out.IssueID, &out.ArticleID, &out.Section, &out.Type, &out.Title, &out.Dek,
		&out.Author, &out.BodyHTML, &out.BodyFormat, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	out.ID = id.String()
	return out, nil
}

// FindByID retrieves an article by its UUID. Returns nil if not found.
func (s *ArticleStore) FindByID(id string) (*models.Article, error) {
	out := &models.Article{}
	var rowID uuid.UUID
	err := s.db.QueryRow(`
		SELECT id, issue_id, article_id, section, type, title, dek, author, body_html, body_format, created_at
		FROM articles WHERE id = $1
	`, id).Scan(
		&rowID, &out.IssueID, &out.ArticleID, &out.Section, &out.Type, &out.Title, &out.Dek,
		&out.Author, &out.BodyHTML, &out.BodyFormat, &out.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	out.ID = rowID.String()
	return out, nil
}

// ListByIssueID returns all articles belonging to an issue, in insertion order.
func (s *ArticleStore) ListByIssueID(issueID string) ([]*models.Article, error) {
	rows, err := s.db.Query(`
		SELECT id, issue_id, article_id, section, type, title, dek, author, body_html, body_format, created_at
		FROM articles WHERE issue_id = $1 ORDER BY created_at ASC
	`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list articles by issue: %w", err)
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		out := &models.Article{}
		var rowID uuid.UUID
		if err := rows.Scan(
			&rowID, &out.IssueID, &out.ArticleID, &out.Section, &out.Type, &out.Title, &out.Dek,
			&out.Author, &out.BodyHTML, &out.BodyFormat, &out.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out.ID = rowID.String()
		articles = append(articles, out)
	}
	return articles, rows.Err()
}

// Delete removes an article and (via FK cascade) its images.
func (s *ArticleStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}
