// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"magazinecore/internal/models"
)

// TemplatePackStore handles template pack database operations. Packs are
// normally loaded from YAML files (see internal/packs) and registered here
// so a render job can reference one by ID; the variants/rules JSONB columns
// are the durable record once a pack has been used by a job.
type TemplatePackStore struct {
	db *sql.DB
}

// NewTemplatePackStore creates a new TemplatePackStore with the given database connection.
func NewTemplatePackStore(db *sql.DB) *TemplatePackStore {
	return &TemplatePackStore{db: db}
}

// FindByID retrieves a template pack by ID. Returns nil if not found.
func (s *TemplatePackStore) FindByID(id string) (*models.TemplatePack, error) {
	p := &models.TemplatePack{}
	var variantsRaw, rulesRaw []byte
	err := s.db.QueryRow(`
		SELECT id, name, version, is_active, variants, rules
		FROM template_packs WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Version, &p.IsActive, &variantsRaw, &rulesRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template pack by id: %w", err)
	}
	if err := unmarshalPack(p, variantsRaw, rulesRaw); err != nil {
		return nil, err
	}
	return p, nil
}

// ListActive returns all packs flagged active, for render-job pack selection.
func (s *TemplatePackStore) ListActive() ([]*models.TemplatePack, error) {
	rows, err := s.db.Query(`
		SELECT id, name, version, is_active, variants, rules
		FROM template_packs WHERE is_active = TRUE ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active template packs: %w", err)
	}
	defer rows.Close()

	var packs []*models.TemplatePack
	for rows.Next() {
		p := &models.TemplatePack{}
		var variantsRaw, rulesRaw []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Version, &p.IsActive, &variantsRaw, &rulesRaw); err != nil {
			return nil, fmt.Errorf("scan template pack: %w", err)
		}
		if err := unmarshalPack(p, variantsRaw, rulesRaw); err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

// Upsert inserts or replaces a pack's row; if the ID already exists, its
// name, version, active flag, variants and rules are overwritten with p's
// values (the version is not incremented here). Used by the YAML pack
// loader to register packs found on disk.
func (s *TemplatePackStore) Upsert(p *models.TemplatePack) error {
	variantsRaw, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("marshal pack variants: %w", err)
	}
	rulesRaw, err := json.Marshal(p.Rules)
	if err != nil {
		return fmt.Errorf("marshal pack rules: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO template_packs (id, name, version, is_active, variants, rules)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, version = EXCLUDED.version, is_active = EXCLUDED.is_active,
		    variants = EXCLUDED.variants, rules = EXCLUDED.rules, updated_at = NOW()
	`, p.ID, p.Name, p.Version, p.IsActive, variantsRaw, rulesRaw)
	if err != nil {
		return fmt.Errorf("upsert template pack: %w", err)
	}
	return nil
}

// SetActive flips a pack's is_active flag.
func (s *TemplatePackStore) SetActive(id string, active bool) error {
	_, err := s.db.Exec(`
		UPDATE template_packs SET is_active = $1, updated_at = NOW() WHERE id = $2
	`, active, id)
	if err != nil {
		return fmt.Errorf("set template pack active: %w", err)
	}
	return nil
}

func unmarshalPack(p *models.TemplatePack, variantsRaw, rulesRaw []byte) error {
	if err := json.Unmarshal(variantsRaw, &p.Variants); err != nil {
		return fmt.Errorf("unmarshal pack variants: %w", err)
	}
	if err := json.Unmarshal(rulesRaw, &p.Rules); err != nil {
		return fmt.Errorf("unmarshal pack rules: %w", err)
	}
	return nil
}
