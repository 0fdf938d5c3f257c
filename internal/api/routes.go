// Package api wires the HTTP surface of the cadastral export service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cadastral-export/internal/config"
	"cadastral-export/internal/db"
)

// NewRouter creates and configures the Chi router
func NewRouter(cfg *config.Config, database *db.DB) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(CORS(cfg.FrontendOrigin))

	// Create handlers
	h := NewHandlers(cfg, database)

	r.Get("/healthz", h.Healthz)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimitMaxRequests, cfg.RateLimitWindow))
		r.Post("/parse", h.Parse)
		r.Post("/query", h.Query)
		r.Post("/search", h.Search)
		r.Post("/export/kml", h.ExportKML)
		r.Post("/export/kmz", h.ExportKMZ)
		r.Post("/export/geojson", h.ExportGeoJSON)
	})

	return r
}
