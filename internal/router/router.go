// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// magazinecore job-trigger admin surface. It organizes routes into the
// unauthenticated auth flow and the authenticated dashboard/jobs group.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"magazinecore/internal/handlers"
	"magazinecore/internal/middleware"
	"magazinecore/internal/session"
	"magazinecore/web"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. Set secureCookies to true in production to
// mark session and CSRF cookies as Secure (HTTPS-only).
func New(sessionStore *session.Store, dashboard *handlers.Dashboard, jobs *handlers.Jobs, auth *handlers.Auth, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Auth endpoints are tightly limited (brute-force protection).
	authLimiter := middleware.NewRateLimiter(10, 1*time.Minute)

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(sessionStore))

	// Static assets (compiled CSS, vendored JS) — served from the embedded FS.
	// In production the Docker build populates these; in development the
	// templates use CDN instead, so 404s on /static/ are harmless.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))

		// Auth pages — rate-limited to prevent brute force.
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Get("/login", auth.LoginPage)
			r.Post("/login", auth.LoginSubmit)
			r.Post("/logout", auth.Logout)
		})

		// 2FA — requires auth but not yet a completed 2FA round trip.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(authLimiter.Middleware)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Post("/2fa/setup", auth.TwoFAVerifySubmit)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", dashboard.Index)
			r.Get("/dashboard", dashboard.Index)

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", dashboard.Index) // HTMX polling target; hx-select picks out <tbody>.
				r.Post("/", jobs.Submit)
				r.Get("/{id}", jobs.Status)
				r.Post("/{id}/cancel", jobs.Cancel)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
