// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package packs loads template pack definitions from YAML files on disk
// and registers them with the database so render jobs can reference a
// pack by ID. A pack file's name (minus extension) is its ID.
package packs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"magazinecore/internal/models"
	"magazinecore/internal/store"
)

// packFile mirrors models.TemplatePack's YAML shape, minus the fields
// that only make sense once a pack is stored in the database.
type packFile struct {
	Name     string           `yaml:"name"`
	Version  int              `yaml:"version"`
	Variants []models.Variant `yaml:"variants"`
	Rules    models.RuleSet   `yaml:"rules"`
}

// LoadDir reads every *.yaml / *.yml file in dir and upserts it into
// packs. Returns the list of pack IDs it registered, in directory order.
func LoadDir(dir string, packsStore *store.TemplatePackStore) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("packs: read dir %s: %w", dir, err)
	}

	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		pack, err := loadFile(filepath.Join(dir, entry.Name()), id)
		if err != nil {
			return loaded, fmt.Errorf("packs: load %s: %w", entry.Name(), err)
		}

		if err := packsStore.Upsert(pack); err != nil {
			return loaded, fmt.Errorf("packs: register %s: %w", id, err)
		}
		loaded = append(loaded, id)
	}

	return loaded, nil
}

// loadFile parses a single pack file, assigning it the given ID and
// marking it active — pack activation is a deploy-time decision made by
// which files exist in the directory, not a separate admin action.
func loadFile(path, id string) (*models.TemplatePack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var pf packFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if pf.Name == "" {
		return nil, fmt.Errorf("pack %s: name is required", id)
	}
	if len(pf.Variants) == 0 {
		return nil, fmt.Errorf("pack %s: at least one variant is required", id)
	}
	if pf.Version == 0 {
		pf.Version = 1
	}

	return &models.TemplatePack{
		ID:       id,
		Name:     pf.Name,
		Version:  pf.Version,
		IsActive: true,
		Variants: pf.Variants,
		Rules:    pf.Rules,
	}, nil
}
