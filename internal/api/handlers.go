package api

import (
	"log/slog"
	"net/http"

	"github.com/emilianohg/dashone/internal/dashboard"
	"github.com/emilianohg/dashone/internal/models"
	"github.com/emilianohg/dashone/internal/provider"
)

type HealthHandler struct {
	backend string
}

func NewHealthHandler(backend string) *HealthHandler {
	return &HealthHandler{backend: backend}
}

type healthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Backend: h.backend})
}

// DashboardHandler loads a fresh snapshot for every request.
type DashboardHandler struct {
	src     provider.Source
	backend string
	demo    bool
	logger  *slog.Logger
}

func NewDashboardHandler(src provider.Source, backend string, demo bool, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{src: src, backend: backend, demo: demo, logger: logger}
}

type DashboardResponse struct {
	Demo    bool                `json:"demo"`
	Backend string              `json:"backend"`
	View    dashboard.ViewState `json:"view"`
}

// Dashboard handles GET /api/dashboard?search=&program=
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	program := dashboard.NormalizeProgram(q.Get("program"))

	snap, err := provider.Load(r.Context(), h.src, h.logger)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		Demo:    h.demo,
		Backend: h.backend,
		View:    dashboard.Compute(snap.Sessions, snap.Employees, q.Get("search"), program),
	})
}

// Employees handles GET /api/employees
func (h *DashboardHandler) Employees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.src.FetchRoster(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "roster fetch failed", "error", err.Error())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if employees == nil {
		employees = []models.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}
