// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"magazinecore/internal/models"
)

// ImageStore handles image database operations.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore creates a new ImageStore with the given database connection.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

// Create inserts a new image under an article.
func (s *ImageStore) Create(img *models.Image) (*models.Image, error) {
	out := &models.Image{}
	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO images (article_id, source_url, role, caption, credit, focal_x, focal_y, width_px, height_px, dpi)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, article_id, source_url, role, caption, credit, focal_x, focal_y, width_px, height_px, dpi
	`, img.ArticleID, img.SourceURL, img.Role, img.Caption, img.Credit,
		img.FocalPoint.X, img.FocalPoint.Y, img.WidthPx, img.HeightPx, img.DPI).Scan(
		&id, &out.ArticleID, &out.SourceURL, &out.Role, &out.Caption, &out.Credit,
		&out.FocalPoint.X, &out.FocalPoint.Y, &out.WidthPx, &out.HeightPx, &out.DPI,
	)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	out.ID = id.String()
	return out, nil
}

// ListByArticleID returns all images belonging to an article, hero first.
func (s *ImageStore) ListByArticleID(articleID string) ([]*models.Image, error) {
	rows, err := s.db.Query(`
		SELECT id, article_id, source_url, role, caption, credit, focal_x, focal_y, width_px, height_px, dpi
		FROM images WHERE article_id = $1
		ORDER BY (role = 'hero') DESC, id ASC
	`, articleID)
	if err != nil {
		return nil, fmt.Errorf("list images by article: %w", err)
	}
	defer rows.Close()

	var images []*models.Image
	for rows.Next() {
		out := &models.Image{}
		var id uuid.UUID
		if err := rows.Scan(
			&id, &out.ArticleID, &out.SourceURL, &out.Role, &out.Caption, &out.Credit,
			&out.FocalPoint.X, &out.FocalPoint.Y, &out.WidthPx, &out.HeightPx, &out.DPI,
		); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		out.ID = id.String()
		images = append(images, out)
	}
	return images, rows.Err()
}

// Delete removes an image by ID.
func (s *ImageStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
