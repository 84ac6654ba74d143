package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"magazinecore/internal/cache"
	"magazinecore/internal/models"
	"magazinecore/internal/render"
	"magazinecore/internal/store"
)

// Jobs groups the render job submission, status, and cancellation handlers.
type Jobs struct {
	renderer   *render.Renderer
	issues     *store.IssueStore
	packs      *store.TemplatePackStore
	renderJobs *store.RenderJobStore
	signal     *cache.JobSignal
}

// NewJobs creates a new Jobs handler group. signal may be nil in contexts
// that don't need cancellation support (it is only dereferenced by Cancel).
func NewJobs(renderer *render.Renderer, issues *store.IssueStore, packs *store.TemplatePackStore, renderJobs *store.RenderJobStore) *Jobs {
	return &Jobs{renderer: renderer, issues: issues, packs: packs, renderJobs: renderJobs}
}

// WithSignal attaches a cancellation/progress bus, used by Cancel.
func (j *Jobs) WithSignal(signal *cache.JobSignal) *Jobs {
	j.signal = signal
	return j
}

// Submit enqueues a render job for an issue against a template pack. The
// job is picked up by the supervisor's poll loop; this handler only
// validates the pair exists and inserts the queued row.
func (j *Jobs) Submit(w http.ResponseWriter, r *http.Request) {
	issueID := r.FormValue("issue_id")
	packID := r.FormValue("pack_id")

	if msg := validateJobSubmit(issueID, packID); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	renderer := models.RendererPagedPrimary
	if v := r.FormValue("renderer"); v == string(models.RendererHTMLFallback) {
		renderer = models.RendererHTMLFallback
	}

	issue, err := j.issues.FindByID(issueID)
	if err != nil {
		slog.Error("job submit: issue lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if issue == nil {
		http.Error(w, "issue not found", http.StatusNotFound)
		return
	}

	pack, err := j.packs.FindByID(packID)
	if err != nil {
		slog.Error("job submit: pack lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if pack == nil {
		http.Error(w, "template pack not found", http.StatusNotFound)
		return
	}

	job, err := j.renderJobs.Create(issueID, packID, renderer)
	if err != nil {
		slog.Error("job submit: create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(job)
}

// Status returns a job's current state as JSON, for clients that poll
// outside the HTMX-driven dashboard table.
func (j *Jobs) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := j.renderJobs.FindByID(id)
	if err != nil {
		slog.Error("job status lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// Cancel requests cooperative cancellation of an in-flight job. The
// supervisor polls for this flag at its checkpoint schedule; cancellation
// is not immediate.
func (j *Jobs) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := j.renderJobs.FindByID(id)
	if err != nil {
		slog.Error("job cancel lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if job.IsTerminal() {
		http.Error(w, "job already finished", http.StatusConflict)
		return
	}

	if j.signal == nil {
		http.Error(w, "cancellation unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := j.signal.RequestCancel(r.Context(), id); err != nil {
		slog.Error("job cancel request failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
