/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/entries/*       Ledger entry management
  /api/recurrences/*   Recurrence template management
  /api/projection      Run the two-pass simulation
  /api/summary         Plain period totals
  /api/scenarios/*     Saved override bundles
  /api/datasets/*      Demo dataset loaders (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Ledger entry routes
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		// Recurrence template routes
		r.Route("/recurrences", func(r chi.Router) {
			r.Get("/", h.ListRecurrences)
			r.Post("/", h.CreateRecurrence)
			r.Delete("/{id}", h.DeleteRecurrence)
		})

		// Projection routes
		r.Post("/projection", h.RunProjection)
		r.Get("/summary", h.GetSummary)

		// Saved scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/", h.SaveScenario)
			r.Get("/{id}", h.GetScenario)
			r.Delete("/{id}", h.DeleteScenario)
		})

		// Demo dataset routes
		r.Route("/datasets", func(r chi.Router) {
			r.Get("/", h.ListDatasets)
			r.Post("/load", h.LoadDataset)
		})
	})

	// Landing page with a short endpoint index.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Cash-Flow Projection Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Cash-Flow Projection Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><code>GET /api/entries?owner_id=demo</code> - List ledger entries</li>
<li><code>POST /api/projection</code> - Run a projection</li>
<li><code>GET /api/datasets</code> - List demo datasets</li>
</ul>
<p>Load a demo dataset with <code>POST /api/datasets/load {"dataset_id": "tight-month"}</code></p>
</body>
</html>`))
	})

	return r
}
