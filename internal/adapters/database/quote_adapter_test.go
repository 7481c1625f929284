package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

var quoteRowColumns = []string{
	"id", "reference", "user_id", "name", "email", "phone", "company",
	"service_category", "service_type", "budget", "budget_custom", "timeline",
	"project_description", "goals", "target_audience", "features", "ratings",
	"terms", "status", "created_at", "updated_at",
}

func sampleQuote() *entities.QuoteRequest {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &entities.QuoteRequest{
		ID:                 "q-1",
		Reference:          "CQ-123",
		UserID:             "anonymous-1",
		Name:               "Jane Doe",
		Email:              "jane@example.com",
		Phone:              "+1 (555) 123-4567",
		ServiceCategory:    "Digital Marketing",
		Budget:             "1000-5000",
		ProjectDescription: "We need a full SEO audit and a content plan for next year.",
		Features:           []string{"audit", "content"},
		Ratings:            map[string]int{"seo": 5},
		Terms:              true,
		Status:             entities.QuoteStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestQuoteAdapter_Create(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)

	mock.ExpectExec(`INSERT INTO "quote_requests"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, adapter.Create(context.Background(), sampleQuote()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAdapter_NextReferenceNumber(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)

	mock.ExpectQuery(`SELECT nextval\('quote_reference_seq'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(1000)))
	mock.ExpectQuery(`SELECT nextval\('quote_reference_seq'\)`).
		WillReturnError(errors.New("relation does not exist"))

	n, err := adapter.NextReferenceNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	_, err = adapter.NextReferenceNumber(context.Background())
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAdapter_Create_DuplicateReferenceIsConflict(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)

	mock.ExpectExec(`INSERT INTO "quote_requests"`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := adapter.Create(context.Background(), sampleQuote())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAdapter_Create_OtherErrorsAreInternal(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)

	mock.ExpectExec(`INSERT INTO "quote_requests"`).WillReturnError(errors.New("connection reset"))

	err := adapter.Create(context.Background(), sampleQuote())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestQuoteAdapter_GetByID(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "quote_requests" WHERE \("id" = 'q-1'\) LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(quoteRowColumns).AddRow(
			"q-1", "CQ-123", "user-1", "Jane Doe", "jane@example.com", "5551234567", nil,
			"Digital Marketing", "seo", "1000-5000", false, nil,
			"We need a full SEO audit and a content plan for next year.", nil, nil,
			"{audit,content}", `{"seo":5,"price":3}`, true, "pending", created, created,
		))

	q, err := adapter.GetByID(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, "CQ-123", q.Reference)
	assert.Equal(t, "seo", q.ServiceType)
	assert.Empty(t, q.Company)
	assert.Equal(t, []string{"audit", "content"}, q.Features)
	assert.Equal(t, map[string]int{"seo": 5, "price": 3}, q.Ratings)
	assert.Equal(t, entities.QuoteStatusPending, q.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAdapter_GetByID_NotFound(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "quote_requests"`).WillReturnError(sql.ErrNoRows)

	_, err := adapter.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestQuoteAdapter_List_AppliesFilter(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "quote_requests" WHERE \(\("status" = 'pending'\) AND \("created_at" < .*\)\) ORDER BY "created_at" DESC LIMIT 50`).
		WillReturnRows(sqlmock.NewRows(quoteRowColumns))

	quotes, err := adapter.List(context.Background(), repositories.QuoteFilter{
		Status:        entities.QuoteStatusPending,
		CreatedBefore: &cutoff,
		Limit:         50,
	})
	require.NoError(t, err)
	assert.Empty(t, quotes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAdapter_Update_NotFound(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)

	mock.ExpectExec(`UPDATE "quote_requests" SET .* WHERE \("id" = 'q-1'\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Update(context.Background(), sampleQuote())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestQuoteAdapter_CountByStatus(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewQuoteAdapter(client)

	mock.ExpectQuery(`SELECT "status", COUNT\(\*\) FROM "quote_requests" GROUP BY "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 4).
			AddRow("approved", 1))

	counts, err := adapter.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts[entities.QuoteStatusPending])
	assert.Equal(t, 1, counts[entities.QuoteStatusApproved])
}
