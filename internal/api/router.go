// Package api serves the dashboard as JSON over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emilianohg/dashone/internal/provider"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(backend *provider.Backend, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(backend.Name)
	dashboardH := NewDashboardHandler(backend, backend.Name, backend.Demo, logger)

	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", dashboardH.Dashboard)
		r.Get("/employees", dashboardH.Employees)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
