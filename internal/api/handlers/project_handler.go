package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// ProjectService defines the project operations used by the handler
type ProjectService interface {
	ListByUser(ctx context.Context, userID string) ([]*entities.Project, error)
	Get(ctx context.Context, id string) (*entities.Project, error)
	Create(ctx context.Context, p *entities.Project) error
	Update(ctx context.Context, id string, patch entities.ProjectPatch) (*entities.Project, error)
}

// ProjectHandler handles client projects
type ProjectHandler struct {
	service ProjectService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(service ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type projectRequest struct {
	UserID      string                 `json:"user_id"`
	QuoteID     *string                `json:"quote_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Status      entities.ProjectStatus `json:"status"`
	Progress    int                    `json:"progress"`
	StartDate   *time.Time             `json:"start_date"`
	DueDate     *time.Time             `json:"due_date"`
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	app := entities.AppContextFrom(r.Context())
	projects, err := h.service.ListByUser(r.Context(), app.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"count":    len(projects),
	})
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var payload projectRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	project := &entities.Project{
		UserID:      payload.UserID,
		QuoteID:     payload.QuoteID,
		Name:        payload.Name,
		Description: payload.Description,
		Status:      payload.Status,
		Progress:    payload.Progress,
		StartDate:   payload.StartDate,
		DueDate:     payload.DueDate,
	}
	if err := h.service.Create(r.Context(), project); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, project)
}

// GetProject handles GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, project)
}

// UpdateProject handles PATCH /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch entities.ProjectPatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}

	project, err := h.service.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, project)
}
