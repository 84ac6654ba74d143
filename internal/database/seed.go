// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// operator account (2FA set up on first login) and the built-in "Modern
// Pack" template pack, so a freshly migrated instance can accept a render
// job immediately.
func Seed(db *sql.DB) error {
	if err := seedAdminUser(db); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	if err := seedDefaultPack(db); err != nil {
		return fmt.Errorf("seed default pack: %w", err)
	}
	return nil
}

// seedAdminUser creates a default operator account if no users exist. The
// operator must set up TOTP on first login (totp_enabled = false).
func seedAdminUser(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, totp_enabled)
		VALUES ($1, $2, $3)
	`, "admin@magazinecore.local", string(hash), false)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}

	slog.Info("database seeded with default operator account",
		"email", "admin@magazinecore.local",
		"password", "admin",
	)
	return nil
}

// seedDefaultPack installs "modern-pack" so an out-of-the-box instance can
// render a job without first uploading a template pack definition.
func seedDefaultPack(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM template_packs").Scan(&count); err != nil {
		return fmt.Errorf("count template packs: %w", err)
	}
	if count > 0 {
		return nil
	}

	variants := []map[string]any{
		{
			"id":      "single-column",
			"columns": 1,
			"hero":    map[string]any{"min_vh": 30, "max_vh": 50},
		},
		{
			"id":        "two-column",
			"columns":   2,
			"hero":      map[string]any{"min_vh": 35, "max_vh": 60},
			"pullquote": map[string]any{"allow": true, "min_paragraph": 4},
		},
		{
			"id":        "three-column",
			"columns":   3,
			"pullquote": map[string]any{"allow": true, "min_paragraph": 6},
		},
	}
	rules := map[string]any{
		"typography": map[string]any{
			"font_min": 9.0, "font_max": 12.0,
			"line_height_min": 1.3, "line_height_max": 1.6,
		},
		"layout": map[string]any{
			"max_columns": 3, "min_text_length": 150, "max_text_length": 4000,
		},
		"images": map[string]any{
			"hero_required_words": 400, "max_images_per_column": 2,
		},
	}

	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return fmt.Errorf("marshal variants: %w", err)
	}
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO template_packs (id, name, version, is_active, variants, rules)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, "modern-pack", "Modern Pack", 1, true, variantsJSON, rulesJSON)
	if err != nil {
		return fmt.Errorf("insert pack: %w", err)
	}

	slog.Info("database seeded with default template pack", "pack_id", "modern-pack")
	return nil
}
