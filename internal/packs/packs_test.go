// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package packs

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"magazinecore/internal/database"
	"magazinecore/internal/store"
)

const validPackYAML = `
name: Modern Grid
version: 2
variants:
  - id: single-column
    columns: 1
  - id: two-column
    columns: 2
    hero:
      min_vh: 20
      max_vh: 40
rules:
  typography:
    font_min: 9.5
    font_max: 13
    line_height_min: 1.2
    line_height_max: 1.6
  layout:
    max_columns: 3
    min_text_length: 200
    max_text_length: 8000
  images:
    hero_required_words: 400
    max_images_per_column: 2
`

func writeTempPack(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write temp pack: %v", err)
	}
}

func TestLoadFile_Valid(t *testing.T) {
	dir := t.TempDir()
	writeTempPack(t, dir, "modern.yaml", validPackYAML)

	pack, err := loadFile(filepath.Join(dir, "modern.yaml"), "modern")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pack.ID != "modern" {
		t.Errorf("ID = %q, want modern", pack.ID)
	}
	if pack.Name != "Modern Grid" {
		t.Errorf("Name = %q, want Modern Grid", pack.Name)
	}
	if !pack.IsActive {
		t.Error("expected pack to be marked active")
	}
	if len(pack.Variants) != 2 {
		t.Fatalf("len(Variants) = %d, want 2", len(pack.Variants))
	}
	if pack.Variants[1].Hero == nil || pack.Variants[1].Hero.MaxVH != 40 {
		t.Errorf("Variants[1].Hero = %+v, want MaxVH 40", pack.Variants[1].Hero)
	}
}

func TestLoadFile_MissingName(t *testing.T) {
	dir := t.TempDir()
	writeTempPack(t, dir, "bad.yaml", "version: 1\nvariants:\n  - id: x\n    columns: 1\n")

	if _, err := loadFile(filepath.Join(dir, "bad.yaml"), "bad"); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestLoadFile_NoVariants(t *testing.T) {
	dir := t.TempDir()
	writeTempPack(t, dir, "bad.yaml", "name: Empty\n")

	if _, err := loadFile(filepath.Join(dir, "bad.yaml"), "bad"); err == nil {
		t.Fatal("expected error for no variants")
	}
}

func TestLoadFile_DefaultsVersionToOne(t *testing.T) {
	dir := t.TempDir()
	writeTempPack(t, dir, "noversion.yaml", "name: X\nvariants:\n  - id: x\n    columns: 1\n")

	pack, err := loadFile(filepath.Join(dir, "noversion.yaml"), "noversion")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pack.Version != 1 {
		t.Errorf("Version = %d, want 1", pack.Version)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "magazinecore")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "magazinecore")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadDir_RegistersPacks(t *testing.T) {
	db := testDB(t)
	packsStore := store.NewTemplatePackStore(db)

	dir := t.TempDir()
	writeTempPack(t, dir, "integration-test-pack.yaml", validPackYAML)
	writeTempPack(t, dir, "ignored.txt", "not a pack")

	t.Cleanup(func() {
		db.Exec("DELETE FROM template_packs WHERE id = $1", "integration-test-pack")
	})

	ids, err := LoadDir(dir, packsStore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "integration-test-pack" {
		t.Fatalf("ids = %v, want [integration-test-pack]", ids)
	}

	pack, err := packsStore.FindByID("integration-test-pack")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if pack == nil {
		t.Fatal("expected pack to be persisted")
	}
	if pack.Name != "Modern Grid" {
		t.Errorf("Name = %q, want Modern Grid", pack.Name)
	}
}
