package repositories

import (
	"context"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *entities.Project) error
	GetByID(ctx context.Context, id string) (*entities.Project, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Project, error)
	Update(ctx context.Context, project *entities.Project) error

	// CountByStatus returns the number of projects per status
	CountByStatus(ctx context.Context) (map[entities.ProjectStatus]int, error)
}
