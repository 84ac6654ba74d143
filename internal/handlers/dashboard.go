package handlers

import (
	"log/slog"
	"net/http"

	"magazinecore/internal/models"
	"magazinecore/internal/render"
	"magazinecore/internal/store"
)

// recentJobLimit bounds how many jobs the dashboard table shows per poll.
const recentJobLimit = 50

// Dashboard serves the operator landing page: render job counts and the
// live-polled job table.
type Dashboard struct {
	renderer   *render.Renderer
	renderJobs *store.RenderJobStore
}

// NewDashboard creates a new Dashboard handler group.
func NewDashboard(renderer *render.Renderer, renderJobs *store.RenderJobStore) *Dashboard {
	return &Dashboard{renderer: renderer, renderJobs: renderJobs}
}

// Index renders the dashboard page (and, on HTMX poll requests, just the
// refreshed job table body).
func (d *Dashboard) Index(w http.ResponseWriter, r *http.Request) {
	data, err := d.summaryData()
	if err != nil {
		slog.Error("dashboard summary failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	d.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data:    data,
	})
}

func (d *Dashboard) summaryData() (map[string]any, error) {
	queued, err := d.renderJobs.CountByStatus(models.JobStatusQueued)
	if err != nil {
		return nil, err
	}
	processing, err := d.renderJobs.CountByStatus(models.JobStatusProcessing)
	if err != nil {
		return nil, err
	}
	completed, err := d.renderJobs.CountByStatus(models.JobStatusCompleted)
	if err != nil {
		return nil, err
	}
	failed, err := d.renderJobs.CountByStatus(models.JobStatusFailed)
	if err != nil {
		return nil, err
	}
	jobs, err := d.renderJobs.ListRecent(recentJobLimit)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"QueuedCount":     queued,
		"ProcessingCount": processing,
		"CompletedCount":  completed,
		"FailedCount":     failed,
		"Jobs":            jobs,
	}, nil
}
