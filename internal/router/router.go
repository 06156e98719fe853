// Package router sets up the HTTP routes and middleware chain for the
// Inkwell API server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(docs *handlers.Documents, drafts *handlers.Autosave) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// API routes — every document operation is owner-scoped, so the
	// caller's identity is required throughout.
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docs.Create)
			r.Get("/", docs.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", docs.Get)
				r.Patch("/", docs.Update)
				r.Delete("/", docs.Delete)

				r.Route("/versions", func(r chi.Router) {
					r.Get("/", docs.ListVersions)
					r.Get("/{number}", docs.GetVersion)
					r.Post("/{number}/rollback", docs.Rollback)
				})

				r.Route("/autosave", func(r chi.Router) {
					r.Post("/", drafts.Schedule)
					r.Get("/", drafts.Status)
					r.Post("/force", drafts.Force)
					r.Post("/resolve", drafts.Resolve)
				})
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
