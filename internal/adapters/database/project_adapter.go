package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

const projectTable = "projects"

var projectColumns = []interface{}{
	"id", "user_id", "quote_id", "name", "description", "status", "progress",
	"start_date", "due_date", "created_at", "updated_at",
}

// ProjectAdapter implements ProjectRepository
type ProjectAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.ProjectRepository = (*ProjectAdapter)(nil)

// NewProjectAdapter creates a new project adapter
func NewProjectAdapter(client *postgres.Client) *ProjectAdapter {
	return &ProjectAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a project
func (a *ProjectAdapter) Create(ctx context.Context, project *entities.Project) error {
	record := goqu.Record{
		"id":          project.ID,
		"user_id":     project.UserID,
		"quote_id":    nullStringPtr(project.QuoteID),
		"name":        project.Name,
		"description": nullString(project.Description),
		"status":      project.Status,
		"progress":    project.Progress,
		"start_date":  nullTime(project.StartDate),
		"due_date":    nullTime(project.DueDate),
		"created_at":  project.CreatedAt,
		"updated_at":  project.UpdatedAt,
	}

	query, args, err := a.db.Insert(projectTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create project", err)
	}
	return nil
}

// GetByID retrieves a project by ID
func (a *ProjectAdapter) GetByID(ctx context.Context, id string) (*entities.Project, error) {
	query, args, err := a.db.Select(projectColumns...).From(projectTable).
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return scanProject(a.client.DB().QueryRowContext(ctx, query, args...))
}

// ListByUser retrieves the projects of a user, newest first
func (a *ProjectAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Project, error) {
	query, args, err := a.db.Select(projectColumns...).From(projectTable).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list projects", err)
	}
	defer rows.Close()

	projects := make([]*entities.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate projects", err)
	}
	return projects, nil
}

// Update persists the mutable project fields
func (a *ProjectAdapter) Update(ctx context.Context, project *entities.Project) error {
	project.UpdatedAt = time.Now().UTC()

	record := goqu.Record{
		"name":        project.Name,
		"description": nullString(project.Description),
		"status":      project.Status,
		"progress":    project.Progress,
		"start_date":  nullTime(project.StartDate),
		"due_date":    nullTime(project.DueDate),
		"updated_at":  project.UpdatedAt,
	}

	query, args, err := a.db.Update(projectTable).
		Set(record).
		Where(goqu.Ex{"id": project.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update project", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("project with id %s not found", project.ID))
	}
	return nil
}

// CountByStatus returns the number of projects per status
func (a *ProjectAdapter) CountByStatus(ctx context.Context) (map[entities.ProjectStatus]int, error) {
	query, args, err := a.db.Select(goqu.C("status"), goqu.COUNT("*")).
		From(projectTable).
		GroupBy(goqu.C("status")).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count projects", err)
	}
	defer rows.Close()

	counts := make(map[entities.ProjectStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperrors.NewInternalError("failed to scan project count", err)
		}
		counts[entities.ProjectStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanProject(row rowScanner) (*entities.Project, error) {
	p := &entities.Project{}
	var quoteID, description sql.NullString
	var startDate, dueDate sql.NullTime
	var status string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&quoteID,
		&p.Name,
		&description,
		&status,
		&p.Progress,
		&startDate,
		&dueDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("project not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan project", err)
	}

	p.QuoteID = stringPtr(quoteID)
	p.Description = description.String
	p.Status = entities.ProjectStatus(status)
	p.StartDate = timePtr(startDate)
	p.DueDate = timePtr(dueDate)
	return p, nil
}
