// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package supervisor drives queued render jobs through the layout
// decision, document composition, and rendering stages, reporting
// progress at a fixed checkpoint schedule and polling for cooperative
// cancellation between checkpoints.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"magazinecore/internal/artifact"
	"magazinecore/internal/cache"
	"magazinecore/internal/compose"
	"magazinecore/internal/layout"
	"magazinecore/internal/markdown"
	"magazinecore/internal/models"
	"magazinecore/internal/renderer"
	"magazinecore/internal/store"
)

// checkpoints is the fixed progress schedule a job reports as it moves
// through composition and rendering. 100 is reported by MarkCompleted,
// not by an explicit checkpoint write.
var checkpoints = []int{10, 25, 50, 70, 85, 95}

// cancelPollCheckpoints are the checkpoints at which the supervisor polls
// for a cancellation request before doing the next unit of work — every
// checkpoint short of the final render handoff, since once the renderer
// adapter is running there is nothing left to cancel into.
var cancelPollCheckpoints = map[int]bool{10: true, 25: true, 50: true, 70: true, 85: true}

// errCancelled signals a job was cancelled cooperatively; it is not a
// render failure and is reported to the store as such by the caller.
var errCancelled = fmt.Errorf("render job cancelled")

// Supervisor dequeues and runs render jobs one at a time.
type Supervisor struct {
	issues   *store.IssueStore
	articles *store.ArticleStore
	images   *store.ImageStore
	packs    *store.TemplatePackStore
	jobs     *store.RenderJobStore
	signal   *cache.JobSignal
	artifacts *artifact.Store
	render   renderer.Adapter
}

// Deps bundles the Supervisor's dependencies.
type Deps struct {
	Issues    *store.IssueStore
	Articles  *store.ArticleStore
	Images    *store.ImageStore
	Packs     *store.TemplatePackStore
	Jobs      *store.RenderJobStore
	Signal    *cache.JobSignal
	Artifacts *artifact.Store
	Render    renderer.Adapter
}

// New builds a Supervisor from its dependencies.
func New(d Deps) *Supervisor {
	return &Supervisor{
		issues:    d.Issues,
		articles:  d.Articles,
		images:    d.Images,
		packs:     d.Packs,
		jobs:      d.Jobs,
		signal:    d.Signal,
		artifacts: d.Artifacts,
		render:    d.Render,
	}
}

// RunQueued processes every currently queued job in order, logging but
// not aborting the sweep when one job fails — later jobs should still
// get their chance.
func (s *Supervisor) RunQueued(ctx context.Context) (int, error) {
	queued, err := s.jobs.ListQueued()
	if err != nil {
		return 0, fmt.Errorf("supervisor: list queued jobs: %w", err)
	}

	for _, job := range queued {
		if err := s.RunJob(ctx, job); err != nil {
			slog.Error("render job failed", "job_id", job.ID, "error", err)
		}
	}
	return len(queued), nil
}

// RunJob drives one job from queued to a terminal state.
func (s *Supervisor) RunJob(ctx context.Context, job *models.RenderJob) error {
	defer s.signal.ClearCancel(ctx, job.ID)

	if err := s.checkpoint(ctx, job.ID, checkpoints[0]); err != nil {
		return s.fail(job.ID, err)
	}

	issue, err := s.issues.FindByID(job.IssueID)
	if err != nil {
		return s.fail(job.ID, fmt.Errorf("load issue: %w", err))
	}
	if issue == nil {
		return s.fail(job.ID, fmt.Errorf("issue %s not found", job.IssueID))
	}

	pack, err := s.packs.FindByID(job.TemplatePackID)
	if err != nil {
		return s.fail(job.ID, fmt.Errorf("load template pack: %w", err))
	}
	if pack == nil {
		return s.fail(job.ID, fmt.Errorf("template pack %s not found", job.TemplatePackID))
	}

	if err := s.checkpoint(ctx, job.ID, checkpoints[1]); err != nil {
		return s.fail(job.ID, err)
	}

	articles, err := s.articles.ListByIssueID(issue.ID)
	if err != nil {
		return s.fail(job.ID, fmt.Errorf("load articles: %w", err))
	}

	decisions := make([]compose.ArticleDecision, 0, len(articles))
	for _, a := range articles {
		images, err := s.images.ListByArticleID(a.ID)
		if err != nil {
			return s.fail(job.ID, fmt.Errorf("load images for article %s: %w", a.ID, err))
		}
		imgValues := make([]models.Image, len(images))
		for i, img := range images {
			imgValues[i] = *img
		}

		if a.BodyFormat == models.BodyFormatMarkdown {
			htmlBody, err := markdown.ToHTML(a.BodyHTML)
			if err != nil {
				return s.fail(job.ID, fmt.Errorf("convert markdown body for article %s: %w", a.ID, err))
			}
			a.BodyHTML = htmlBody
			a.BodyFormat = models.BodyFormatHTML
		}

		metrics := layout.Analyze(a, imgValues)
		decision := layout.Decide(metrics, pack.Variants, pack.Rules)

		decisions = append(decisions, compose.ArticleDecision{
			Article:  a,
			Images:   imgValues,
			Metrics:  metrics,
			Decision: decision,
		})
	}

	if err := s.checkpoint(ctx, job.ID, checkpoints[2]); err != nil {
		return s.fail(job.ID, err)
	}

	generated, err := compose.Compose(issue, decisions, pack)
	if err != nil {
		return s.fail(job.ID, fmt.Errorf("compose document: %w", err))
	}

	if err := s.checkpoint(ctx, job.ID, checkpoints[3]); err != nil {
		return s.fail(job.ID, err)
	}

	// A job that explicitly selected html_fallback skips the primary
	// renderer chain entirely; it is not a downgrade, so it never earns
	// the "PDF rendering unavailable" warning below.
	dispatch := s.render
	if job.Renderer == models.RendererHTMLFallback {
		dispatch = renderer.HTMLFallback{}
	}

	doc := renderer.Document{HTML: generated.HTML, CSS: generated.CSS, Decisions: generated.Metadata.Decisions}
	out, err := dispatch.Render(ctx, doc)
	if err != nil {
		return s.fail(job.ID, fmt.Errorf("render document: %w", err))
	}

	if err := s.checkpoint(ctx, job.ID, checkpoints[4]); err != nil {
		return s.fail(job.ID, err)
	}

	ext := "html"
	if out.Format == "pdf" {
		ext = "pdf"
	}
	artifactName, err := s.artifacts.Write(issue.ID, pack.Name, time.Now().UnixMilli(), ext, out.Content)
	if err != nil {
		return s.fail(job.ID, fmt.Errorf("write artifact: %w", err))
	}

	if err := s.checkpoint(ctx, job.ID, checkpoints[5]); err != nil {
		return s.fail(job.ID, err)
	}

	warnings := append([]string{}, generated.Metadata.Warnings...)
	if out.Format != "pdf" && job.Renderer == models.RendererPagedPrimary {
		warnings = append(warnings, "PDF rendering unavailable in this environment, generated HTML preview instead")
	}

	decisionSummary := summarize(generated.Metadata)
	if err := s.jobs.MarkCompleted(job.ID, artifactName, warnings, decisionSummary); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	s.signal.PublishProgress(ctx, job.ID, cache.ProgressEvent{Status: string(models.JobStatusCompleted), Progress: 100})
	return nil
}

// checkpoint advances the job's reported progress and, at a cancellable
// checkpoint, checks for a pending cancellation request before returning.
func (s *Supervisor) checkpoint(ctx context.Context, jobID string, progress int) error {
	status := models.JobStatusProcessing
	if err := s.jobs.UpdateProgress(jobID, status, progress); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	s.signal.PublishProgress(ctx, jobID, cache.ProgressEvent{Status: string(status), Progress: progress})

	if cancelPollCheckpoints[progress] && s.signal.IsCancelRequested(ctx, jobID) {
		return errCancelled
	}
	return nil
}

// fail marks the job failed (or cancelled) and returns an error for the
// caller's log line; cancellation and ordinary failures share a path
// since both leave the job in a terminal, non-completed state.
func (s *Supervisor) fail(jobID string, cause error) error {
	msg := cause.Error()
	if cause == errCancelled {
		msg = "Job was cancelled"
	}
	if err := s.jobs.MarkFailed(jobID, msg); err != nil {
		return fmt.Errorf("mark job failed (cause: %w): %w", cause, err)
	}
	return cause
}

// summarize builds the job row's compact decision summary from the
// composer's full per-article metadata: the first article's decision,
// since that is the one most representative of the issue's overall look.
func summarize(meta compose.Metadata) *models.DecisionSummary {
	if len(meta.Decisions) == 0 {
		return nil
	}
	d := meta.Decisions[0]
	return &models.DecisionSummary{
		FontSize: d.FontSize,
		Columns:  d.Columns,
		Score:    d.Score,
		Warnings: d.Warnings,
	}
}
