// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Store tests are integration tests: they skip when no PostgreSQL instance
// is reachable via the POSTGRES_* environment variables (same defaults as
// internal/database's tests) rather than failing the suite.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"magazinecore/internal/database"
)

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

// testDB opens a connection and runs migrations, skipping the test if no
// database is reachable.
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

func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		if _, err := db.Exec("DELETE FROM users WHERE email = $1", e); err != nil {
			t.Logf("cleanup user %s: %v", e, err)
		}
	}
}

func cleanIssues(t *testing.T, db *sql.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := db.Exec("DELETE FROM issues WHERE id = $1", id); err != nil {
			t.Logf("cleanup issue %s: %v", id, err)
		}
	}
}

func cleanPacks(t *testing.T, db *sql.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := db.Exec("DELETE FROM template_packs WHERE id = $1", id); err != nil {
			t.Logf("cleanup pack %s: %v", id, err)
		}
	}
}
