package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

// ProjectService manages client projects
type ProjectService struct {
	repo      repositories.ProjectRepository
	quoteRepo repositories.QuoteRepository
}

// NewProjectService creates a new project service
func NewProjectService(repo repositories.ProjectRepository, quoteRepo repositories.QuoteRepository) *ProjectService {
	return &ProjectService{repo: repo, quoteRepo: quoteRepo}
}

// ListByUser returns the projects of a user
func (s *ProjectService) ListByUser(ctx context.Context, userID string) ([]*entities.Project, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("sign in to view projects")
	}
	return s.repo.ListByUser(ctx, userID)
}

// Get returns a project visible to the caller
func (s *ProjectService) Get(ctx context.Context, id string) (*entities.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	app := entities.AppContextFrom(ctx)
	if !app.IsAdmin && p.UserID != app.UserID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("project with id %s not found", id))
	}
	return p, nil
}

// Create stores a project for the caller, or for any user when the caller
// is an administrator
func (s *ProjectService) Create(ctx context.Context, p *entities.Project) error {
	app := entities.AppContextFrom(ctx)
	if !app.Authenticated() {
		return apperrors.NewUnauthorizedError("sign in to create projects")
	}
	if p.UserID == "" {
		p.UserID = app.UserID
	}
	if !app.IsAdmin && p.UserID != app.UserID {
		return apperrors.NewForbiddenError("cannot create projects for another user")
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperrors.NewFieldValidationError("invalid request", map[string]string{"name": "is required"})
	}
	if p.Status == "" {
		p.Status = entities.ProjectStatusPlanning
	}
	if !p.Status.Valid() {
		return apperrors.NewFieldValidationError("invalid request", map[string]string{"status": "is not a known project status"})
	}
	if err := checkDates(p); err != nil {
		return err
	}

	if p.QuoteID != nil && *p.QuoteID != "" {
		q, err := s.quoteRepo.GetByID(ctx, *p.QuoteID)
		if err != nil {
			return err
		}
		if q.UserID != p.UserID {
			return apperrors.NewFieldValidationError("invalid request", map[string]string{"quote_id": "belongs to another user"})
		}
	}

	now := time.Now().UTC()
	p.ID = uuid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Normalize()

	return s.repo.Create(ctx, p)
}

// Update applies patch to a project the caller can see
func (s *ProjectService) Update(ctx context.Context, id string, patch entities.ProjectPatch) (*entities.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewFieldValidationError("invalid request", map[string]string{"name": "is required"})
		}
		p.Name = name
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, apperrors.NewFieldValidationError("invalid request", map[string]string{"status": "is not a known project status"})
		}
		p.Status = *patch.Status
	}
	if patch.Progress != nil {
		p.Progress = *patch.Progress
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.DueDate != nil {
		p.DueDate = patch.DueDate
	}
	if err := checkDates(p); err != nil {
		return nil, err
	}

	p.Normalize()
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func checkDates(p *entities.Project) error {
	if p.StartDate != nil && p.DueDate != nil && p.DueDate.Before(*p.StartDate) {
		return apperrors.NewFieldValidationError("invalid request", map[string]string{"due_date": "must not be before start_date"})
	}
	return nil
}
