package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

const (
	quoteTable             = "quote_requests"
	quoteReferenceSequence = "quote_reference_seq"
)

var quoteColumns = []interface{}{
	"id", "reference", "user_id", "name", "email", "phone", "company",
	"service_category", "service_type", "budget", "budget_custom", "timeline",
	"project_description", "goals", "target_audience", "features", "ratings",
	"terms", "status", "created_at", "updated_at",
}

// QuoteAdapter implements QuoteRepository
type QuoteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.QuoteRepository = (*QuoteAdapter)(nil)

// NewQuoteAdapter creates a new quote adapter
func NewQuoteAdapter(client *postgres.Client) *QuoteAdapter {
	return &QuoteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a quote request
func (a *QuoteAdapter) Create(ctx context.Context, quote *entities.QuoteRequest) error {
	if quote == nil {
		return apperrors.NewInternalError("quote is nil", fmt.Errorf("quote is nil"))
	}

	ratings, err := encodeRatings(quote.Ratings)
	if err != nil {
		return apperrors.NewInternalError("failed to encode ratings", err)
	}

	record := goqu.Record{
		"id":                  quote.ID,
		"reference":           quote.Reference,
		"user_id":             quote.UserID,
		"name":                quote.Name,
		"email":               quote.Email,
		"phone":               quote.Phone,
		"company":             nullString(quote.Company),
		"service_category":    quote.ServiceCategory,
		"service_type":        nullString(quote.ServiceType),
		"budget":              quote.Budget,
		"budget_custom":       quote.BudgetCustom,
		"timeline":            nullString(quote.Timeline),
		"project_description": quote.ProjectDescription,
		"goals":               nullString(quote.Goals),
		"target_audience":     nullString(quote.TargetAudience),
		"features":            pq.Array(nonNilStrings(quote.Features)),
		"ratings":             ratings,
		"terms":               quote.Terms,
		"status":              quote.Status,
		"created_at":          quote.CreatedAt,
		"updated_at":          quote.UpdatedAt,
	}

	query, args, err := a.db.Insert(quoteTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build quote insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("quote reference %s already exists", quote.Reference))
		}
		return apperrors.NewInternalError("failed to create quote", err)
	}

	return nil
}

// NextReferenceNumber draws from the quote reference sequence
func (a *QuoteAdapter) NextReferenceNumber(ctx context.Context) (int64, error) {
	query, args, err := a.db.Select(goqu.Func("nextval", quoteReferenceSequence)).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build sequence query", err)
	}

	var n int64
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, apperrors.NewInternalError("failed to draw quote reference number", err)
	}
	return n, nil
}

// GetByID retrieves a quote by ID
func (a *QuoteAdapter) GetByID(ctx context.Context, id string) (*entities.QuoteRequest, error) {
	query, args, err := a.db.Select(quoteColumns...).From(quoteTable).
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.scanQuote(a.client.DB().QueryRowContext(ctx, query, args...))
}

// GetByReference retrieves a quote by its public reference
func (a *QuoteAdapter) GetByReference(ctx context.Context, reference string) (*entities.QuoteRequest, error) {
	query, args, err := a.db.Select(quoteColumns...).From(quoteTable).
		Where(goqu.Ex{"reference": reference}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.scanQuote(a.client.DB().QueryRowContext(ctx, query, args...))
}

// ListByUser retrieves the quotes owned by a user
func (a *QuoteAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.QuoteRequest, error) {
	ds := a.db.Select(quoteColumns...).From(quoteTable).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc())

	return a.queryQuotes(ctx, ds)
}

// List retrieves quotes matching filter
func (a *QuoteAdapter) List(ctx context.Context, filter repositories.QuoteFilter) ([]*entities.QuoteRequest, error) {
	ds := a.db.Select(quoteColumns...).From(quoteTable)

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.CreatedBefore != nil {
		ds = ds.Where(goqu.I("created_at").Lt(*filter.CreatedBefore))
	}

	ds = ds.Order(goqu.I("created_at").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	return a.queryQuotes(ctx, ds)
}

// Update persists the mutable fields and status of a quote
func (a *QuoteAdapter) Update(ctx context.Context, quote *entities.QuoteRequest) error {
	ratings, err := encodeRatings(quote.Ratings)
	if err != nil {
		return apperrors.NewInternalError("failed to encode ratings", err)
	}

	quote.UpdatedAt = time.Now().UTC()
	record := goqu.Record{
		"name":                quote.Name,
		"phone":               quote.Phone,
		"company":             nullString(quote.Company),
		"timeline":            nullString(quote.Timeline),
		"project_description": quote.ProjectDescription,
		"goals":               nullString(quote.Goals),
		"target_audience":     nullString(quote.TargetAudience),
		"features":            pq.Array(nonNilStrings(quote.Features)),
		"ratings":             ratings,
		"status":              quote.Status,
		"updated_at":          quote.UpdatedAt,
	}

	query, args, err := a.db.Update(quoteTable).
		Set(record).
		Where(goqu.Ex{"id": quote.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update quote", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("quote with id %s not found", quote.ID))
	}

	return nil
}

// CountByStatus returns the number of quotes per status
func (a *QuoteAdapter) CountByStatus(ctx context.Context) (map[entities.QuoteStatus]int, error) {
	query, args, err := a.db.Select(goqu.C("status"), goqu.COUNT("*")).
		From(quoteTable).
		GroupBy(goqu.C("status")).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count quotes", err)
	}
	defer rows.Close()

	counts := make(map[entities.QuoteStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperrors.NewInternalError("failed to scan quote count", err)
		}
		counts[entities.QuoteStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate quote counts", err)
	}

	return counts, nil
}

func (a *QuoteAdapter) queryQuotes(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.QuoteRequest, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list quotes", err)
	}
	defer rows.Close()

	quotes := make([]*entities.QuoteRequest, 0)
	for rows.Next() {
		q, err := a.scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate quotes", err)
	}

	return quotes, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *QuoteAdapter) scanQuote(row rowScanner) (*entities.QuoteRequest, error) {
	q := &entities.QuoteRequest{}
	var company, serviceType, timeline, goals, targetAudience sql.NullString
	var features []string
	var ratings []byte
	var status string

	err := row.Scan(
		&q.ID,
		&q.Reference,
		&q.UserID,
		&q.Name,
		&q.Email,
		&q.Phone,
		&company,
		&q.ServiceCategory,
		&serviceType,
		&q.Budget,
		&q.BudgetCustom,
		&timeline,
		&q.ProjectDescription,
		&goals,
		&targetAudience,
		pq.Array(&features),
		&ratings,
		&q.Terms,
		&status,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("quote not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan quote", err)
	}

	q.Company = company.String
	q.ServiceType = serviceType.String
	q.Timeline = timeline.String
	q.Goals = goals.String
	q.TargetAudience = targetAudience.String
	q.Features = features
	q.Status = entities.QuoteStatus(status)
	q.CreatedAt = q.CreatedAt.UTC()
	q.UpdatedAt = q.UpdatedAt.UTC()

	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &q.Ratings); err != nil {
			return nil, apperrors.NewInternalError("failed to decode ratings", err)
		}
	}

	return q, nil
}

func encodeRatings(ratings map[string]int) (string, error) {
	if ratings == nil {
		return "{}", nil
	}
	data, err := json.Marshal(ratings)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
