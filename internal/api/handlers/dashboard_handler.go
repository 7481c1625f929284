package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// DashboardService defines the admin overview used by the handler
type DashboardService interface {
	Summary(ctx context.Context) (*entities.DashboardSummary, error)
}

// DashboardHandler serves the admin dashboard
type DashboardHandler struct {
	service DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetDashboard handles GET /api/admin/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}
