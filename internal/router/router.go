// Package router sets up the HTTP routes and middleware chain for the
// content API server.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"courseforge/internal/handlers"
	"courseforge/internal/middleware"
)

// New creates the configured Chi router with all middleware and routes
// wired up. limiter may be nil to disable rate limiting (tests, dev).
func New(api *handlers.Content, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check — outside the rate limit.
	r.Get("/health", healthHandler)

	r.Route("/api/content", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Post("/", api.Create)
		r.Post("/clone", api.Clone)
		r.Post("/insertrecursive", api.InsertRecursive)

		r.Route("/{id}", func(r chi.Router) {
			r.Patch("/", api.Update)
			r.Delete("/", api.Delete)
			r.Get("/descendants", api.Descendants)
		})
	})

	return r
}

// healthHandler responds with a simple health status for load balancers
// and uptime monitoring.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
