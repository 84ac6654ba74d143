// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package supervisor

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"magazinecore/internal/artifact"
	"magazinecore/internal/cache"
	"magazinecore/internal/database"
	"magazinecore/internal/models"
	"magazinecore/internal/renderer"
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

func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	client := redis.NewClient(&redis.Options{Addr: host + ":" + port, DB: 15})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func samplePack(id string) *models.TemplatePack {
	return &models.TemplatePack{
		ID:       id,
		Name:     "Supervisor Test Pack",
		Version:  1,
		IsActive: true,
		Variants: []models.Variant{
			{ID: "single-column", Columns: 1},
		},
		Rules: models.RuleSet{
			Typography: models.TypographyRules{FontMin: 9, FontMax: 12, LineHeightMin: 1.3, LineHeightMax: 1.6},
			Layout:     models.LayoutRules{MaxColumns: 3, MinTextLength: 50, MaxTextLength: 4000},
			Images:     models.ImageRules{HeroRequiredWords: 400, MaxImagesPerColumn: 2},
		},
	}
}

func TestRunJob_CompletesWithHTMLFallback(t *testing.T) {
	db := testDB(t)
	valkey := testValkeyClient(t)

	issues := store.NewIssueStore(db)
	articles := store.NewArticleStore(db)
	images := store.NewImageStore(db)
	packs := store.NewTemplatePackStore(db)
	jobs := store.NewRenderJobStore(db)
	signal := cache.NewJobSignal(valkey)

	issueID := "2026-10-supervisor-test"
	packID := "supervisor-test-pack"
	t.Cleanup(func() {
		db.Exec("DELETE FROM issues WHERE id = $1", issueID)
		db.Exec("DELETE FROM template_packs WHERE id = $1", packID)
	})

	issue, err := issues.Create(&models.Issue{
		ID: issueID, Title: "Supervisor Test Issue",
		PublishDate: time.Now(), Sections: []string{"Front"},
	})
	if err != nil {
		t.Fatalf("create issue: %v", err)
	}
	if err := packs.Upsert(samplePack(packID)); err != nil {
		t.Fatalf("upsert pack: %v", err)
	}

	article, err := articles.Create(&models.Article{
		IssueID: issue.ID, ArticleID: "lead-story", Section: "Front",
		Type: models.ArticleTypeFeature, Title: "The Lead Story", Author: "Staff Writer",
		BodyHTML:   "<p>" + repeat("word ", 200) + "</p>",
		BodyFormat: models.BodyFormatHTML,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if _, err := images.Create(&models.Image{
		ArticleID: article.ID, SourceURL: "https://example.test/hero.jpg",
		Role: models.ImageRoleHero, FocalPoint: models.FocalPoint{X: 0.5, Y: 0.5},
	}); err != nil {
		t.Fatalf("create image: %v", err)
	}

	job, err := jobs.Create(issue.ID, packID, "")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	outDir := t.TempDir()
	artifacts, err := artifact.New(outDir)
	if err != nil {
		t.Fatalf("new artifact store: %v", err)
	}

	sup := New(Deps{
		Issues: issues, Articles: articles, Images: images,
		Packs: packs, Jobs: jobs, Signal: signal, Artifacts: artifacts,
		Render: renderer.HTMLFallback{},
	})

	if err := sup.RunJob(context.Background(), job); err != nil {
		t.Fatalf("RunJob: %v", err)
	}

	completed, err := jobs.FindByID(job.ID)
	if err != nil {
		t.Fatalf("find job: %v", err)
	}
	if completed.Status != models.JobStatusCompleted {
		t.Fatalf("status = %q, want completed", completed.Status)
	}
	if completed.Progress != 100 {
		t.Errorf("progress = %d, want 100", completed.Progress)
	}
	if completed.ArtifactURL == nil || *completed.ArtifactURL == "" {
		t.Fatal("expected artifact URL to be set")
	}
	wantPrefix := issueID + "-supervisor-test-pack"
	if !strings.HasPrefix(*completed.ArtifactURL, wantPrefix) || !strings.HasSuffix(*completed.ArtifactURL, ".html") {
		t.Errorf("artifact url = %q, want prefix %q and .html suffix", *completed.ArtifactURL, wantPrefix)
	}
	if completed.Decision == nil {
		t.Error("expected decision summary to be set")
	}
	wantWarning := "PDF rendering unavailable in this environment, generated HTML preview instead"
	found := false
	for _, w := range completed.Warnings {
		if w == wantWarning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected fallback warning %q, got %v", wantWarning, completed.Warnings)
	}

	if _, err := os.Stat(artifacts.Open(*completed.ArtifactURL)); err != nil {
		t.Errorf("expected artifact file to exist: %v", err)
	}
}

// TestRunJob_ExplicitHTMLFallbackSkipsDowngradeWarning verifies that a job
// which explicitly selected RendererHTMLFallback does not get the
// downgrade warning that a paged_primary job would get for landing on the
// same HTML output — it asked for HTML directly, nothing was downgraded.
func TestRunJob_ExplicitHTMLFallbackSkipsDowngradeWarning(t *testing.T) {
	db := testDB(t)
	valkey := testValkeyClient(t)

	issues := store.NewIssueStore(db)
	articles := store.NewArticleStore(db)
	images := store.NewImageStore(db)
	packs := store.NewTemplatePackStore(db)
	jobs := store.NewRenderJobStore(db)
	signal := cache.NewJobSignal(valkey)

	issueID := "2026-10-supervisor-explicit-fallback"
	packID := "supervisor-explicit-fallback-pack"
	t.Cleanup(func() {
		db.Exec("DELETE FROM issues WHERE id = $1", issueID)
		db.Exec("DELETE FROM template_packs WHERE id = $1", packID)
	})

	issue, err := issues.Create(&models.Issue{
		ID: issueID, Title: "Explicit Fallback Test Issue",
		PublishDate: time.Now(), Sections: []string{"Front"},
	})
	if err != nil {
		t.Fatalf("create issue: %v", err)
	}
	if err := packs.Upsert(samplePack(packID)); err != nil {
		t.Fatalf("upsert pack: %v", err)
	}

	job, err := jobs.Create(issue.ID, packID, models.RendererHTMLFallback)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	outDir := t.TempDir()
	artifacts, err := artifact.New(outDir)
	if err != nil {
		t.Fatalf("new artifact store: %v", err)
	}

	// Render is deliberately left nil-able-adapter-free: a stub that would
	// fail if called proves the explicit fallback selector bypassed it.
	sup := New(Deps{
		Issues: issues, Articles: articles, Images: images,
		Packs: packs, Jobs: jobs, Signal: signal, Artifacts: artifacts,
		Render: failingAdapter{},
	})

	if err := sup.RunJob(context.Background(), job); err != nil {
		t.Fatalf("RunJob: %v", err)
	}

	completed, err := jobs.FindByID(job.ID)
	if err != nil {
		t.Fatalf("find job: %v", err)
	}
	if completed.Status != models.JobStatusCompleted {
		t.Fatalf("status = %q, want completed", completed.Status)
	}
	for _, w := range completed.Warnings {
		if w == "PDF rendering unavailable in this environment, generated HTML preview instead" {
			t.Errorf("did not expect downgrade warning for an explicit html_fallback selection, got %v", completed.Warnings)
		}
	}
}

type failingAdapter struct{}

func (failingAdapter) Render(_ context.Context, _ renderer.Document) (renderer.Output, error) {
	return renderer.Output{}, fmt.Errorf("primary renderer must not be invoked for an explicit html_fallback job")
}

func TestRunJob_CancelledBeforeRender(t *testing.T) {
	db := testDB(t)
	valkey := testValkeyClient(t)

	issues := store.NewIssueStore(db)
	articles := store.NewArticleStore(db)
	images := store.NewImageStore(db)
	packs := store.NewTemplatePackStore(db)
	jobs := store.NewRenderJobStore(db)
	signal := cache.NewJobSignal(valkey)

	issueID := "2026-10-supervisor-cancel"
	packID := "supervisor-cancel-pack"
	t.Cleanup(func() {
		db.Exec("DELETE FROM issues WHERE id = $1", issueID)
		db.Exec("DELETE FROM template_packs WHERE id = $1", packID)
	})

	issue, err := issues.Create(&models.Issue{
		ID: issueID, Title: "Cancel Test Issue", PublishDate: time.Now(), Sections: []string{"Front"},
	})
	if err != nil {
		t.Fatalf("create issue: %v", err)
	}
	if err := packs.Upsert(samplePack(packID)); err != nil {
		t.Fatalf("upsert pack: %v", err)
	}

	job, err := jobs.Create(issue.ID, packID, "")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	ctx := context.Background()
	if err := signal.RequestCancel(ctx, job.ID); err != nil {
		t.Fatalf("request cancel: %v", err)
	}

	outDir := t.TempDir()
	artifacts, err := artifact.New(outDir)
	if err != nil {
		t.Fatalf("new artifact store: %v", err)
	}

	sup := New(Deps{
		Issues: issues, Articles: articles, Images: images,
		Packs: packs, Jobs: jobs, Signal: signal, Artifacts: artifacts,
		Render: renderer.HTMLFallback{},
	})

	err = sup.RunJob(ctx, job)
	if err != errCancelled {
		t.Fatalf("RunJob error = %v, want errCancelled", err)
	}

	found, err := jobs.FindByID(job.ID)
	if err != nil {
		t.Fatalf("find job: %v", err)
	}
	if found.Status != models.JobStatusFailed {
		t.Errorf("status = %q, want failed (cancelled)", found.Status)
	}
	if found.ErrorMessage == nil || *found.ErrorMessage != "Job was cancelled" {
		t.Errorf("error message = %v, want \"Job was cancelled\"", found.ErrorMessage)
	}
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
