// Package api exposes a record repository over HTTP so that other studylog
// instances can use it as their remote backend.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/manav03panchal/studylog/internal/storage"
)

// NewRouter creates the chi router for repo. metricsHandler is mounted at
// /metrics when non-nil.
func NewRouter(repo storage.Repository, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recovery)

	healthH := NewHealthHandler(repo)
	recordH := NewRecordHandler(repo)

	r.Get("/health", healthH.Health)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/records", func(r chi.Router) {
		r.Get("/", recordH.List)
		r.Post("/", recordH.Create)
		r.Put("/{id}", recordH.Update)
		r.Delete("/{id}", recordH.Delete)
	})

	return r
}
