package handler

import (
	"net/http"

	"github.com/bora-tech/crm-api/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// KPI handles GET /api/dashboard
func (h *DashboardHandler) KPI(w http.ResponseWriter, r *http.Request) {
	kpi, err := h.dashboardService.KPI(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, kpi)
}
