// handler_test.go provides shared fixtures for handler integration tests:
// a real database + Valkey connection (skipped when unavailable) and small
// helpers for building request contexts with a session attached.
package handlers

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"magazinecore/internal/database"
	"magazinecore/internal/middleware"
	"magazinecore/internal/render"
	"magazinecore/internal/session"
	"magazinecore/internal/store"
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

// testEnv bundles the handler groups under test with direct store access
// for fixture setup/teardown.
type testEnv struct {
	Auth          *Auth
	Dashboard     *Dashboard
	Jobs          *Jobs
	Sessions      *session.Store
	UserStore     *store.UserStore
	IssueStore    *store.IssueStore
	PackStore     *store.TemplatePackStore
	RenderJobs    *store.RenderJobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil || db.Ping() != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	valkeyHost := envOr("VALKEY_HOST", "localhost")
	valkeyPort := envOr("VALKEY_PORT", "6379")
	client := redis.NewClient(&redis.Options{
		Addr:     valkeyHost + ":" + valkeyPort,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	sessions := session.NewStore(client, false)
	userStore := store.NewUserStore(db)
	issueStore := store.NewIssueStore(db)
	packStore := store.NewTemplatePackStore(db)
	renderJobStore := store.NewRenderJobStore(db)

	return &testEnv{
		Auth:       NewAuth(renderer, sessions, userStore),
		Dashboard:  NewDashboard(renderer, renderJobStore),
		Jobs:       NewJobs(renderer, issueStore, packStore, renderJobStore),
		Sessions:   sessions,
		UserStore:  userStore,
		IssueStore: issueStore,
		PackStore:  packStore,
		RenderJobs: renderJobStore,
	}
}

// testSession builds a session.Data value for injecting into a request
// context, bypassing the cookie/Valkey round-trip.
func testSession(userID uuid.UUID, email string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:    userID,
		Email:     email,
		TwoFADone: twoFADone,
		CreatedAt: time.Now(),
	}
}

func ctxWithSession(ctx context.Context, sess *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, sess)
}
