package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

func pendingPayment(quoteID *string) *entities.Payment {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &entities.Payment{
		ID:          "p-1",
		UserID:      "user-1",
		QuoteID:     quoteID,
		Reference:   "PAY-1a2b3c4d",
		Email:       "jane@example.com",
		Amount:      1500,
		AmountMinor: 150000,
		Currency:    "USD",
		Status:      entities.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPaymentAdapter_Settle_CommitsPaymentAndQuote(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)
	quoteID := "q-1"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET .* WHERE \(\("reference" = 'PAY-1a2b3c4d'\) AND \("status" IN \('pending', 'cancelled'\)\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "quote_requests" SET .*"status"='paid'.* WHERE \(\("id" = 'q-1'\) AND \("status" = 'approved'\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment := pendingPayment(&quoteID)
	paid, err := adapter.Settle(context.Background(), payment)
	require.NoError(t, err)
	assert.True(t, paid)
	assert.Equal(t, entities.PaymentStatusSuccess, payment.Status)
	assert.NotNil(t, payment.PaidAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAdapter_Settle_WithoutQuote(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	paid, err := adapter.Settle(context.Background(), pendingPayment(nil))
	require.NoError(t, err)
	assert.False(t, paid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAdapter_Settle_AcceptsCancelledPayment(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments" SET .*"status"='success'.* WHERE .*"status" IN \('pending', 'cancelled'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment := pendingPayment(nil)
	payment.Status = entities.PaymentStatusCancelled
	_, err := adapter.Settle(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusSuccess, payment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAdapter_Settle_RollsBackWhenAlreadySettled(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)
	quoteID := "q-1"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := adapter.Settle(context.Background(), pendingPayment(&quoteID))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAdapter_Settle_RollsBackOnQuoteFailure(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)
	quoteID := "q-1"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "quote_requests"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := adapter.Settle(context.Background(), pendingPayment(&quoteID))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentAdapter_UpdateStatus_ConflictWhenNotPending(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)

	mock.ExpectExec(`UPDATE "payments"`).WillReturnResult(sqlmock.NewResult(0, 0))

	p := pendingPayment(nil)
	p.Status = entities.PaymentStatusCancelled
	err := adapter.UpdateStatus(context.Background(), p)
	assert.True(t, apperrors.IsConflict(err))
}

func TestPaymentAdapter_Totals(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)

	mock.ExpectQuery(`SELECT "status", "currency", COUNT\(\*\), COALESCE\(SUM\("amount"\), 0\) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "currency", "count", "sum"}).
			AddRow("success", "USD", 2, 3000.0).
			AddRow("success", "NGN", 1, 50000.0).
			AddRow("pending", "USD", 3, 900.0))

	totals, err := adapter.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, totals.SettledCount)
	assert.Equal(t, 3000.0, totals.SettledAmount["USD"])
	assert.Equal(t, 50000.0, totals.SettledAmount["NGN"])
	assert.Equal(t, 3, totals.PendingCount)
}

func TestPaymentAdapter_GetByReference(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "payments" WHERE \("reference" = 'PAY-1a2b3c4d'\)`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "quote_id", "reference", "email", "amount", "amount_minor",
			"currency", "status", "gateway_reference", "channel", "paid_at", "created_at", "updated_at",
		}).AddRow("p-1", "user-1", "q-1", "PAY-1a2b3c4d", "jane@example.com", 1500.0, int64(150000),
			"USD", "pending", nil, nil, nil, now, now))

	p, err := adapter.GetByReference(context.Background(), "PAY-1a2b3c4d")
	require.NoError(t, err)
	require.NotNil(t, p.QuoteID)
	assert.Equal(t, "q-1", *p.QuoteID)
	assert.Nil(t, p.PaidAt)
	assert.Equal(t, entities.PaymentStatusPending, p.Status)
}

func TestPaymentAdapter_GetOpenByQuote(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPaymentAdapter(client)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "payments" WHERE \(\("quote_id" = 'q-1'\) AND \("status" IN \('pending', 'success'\)\)\) ORDER BY "created_at" DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "quote_id", "reference", "email", "amount", "amount_minor",
			"currency", "status", "gateway_reference", "channel", "paid_at", "created_at", "updated_at",
		}).AddRow("p-2", "user-1", "q-1", "PAY-9f8e7d6c", "jane@example.com", 1500.0, int64(150000),
			"USD", "pending", nil, nil, nil, now, now))

	p, err := adapter.GetOpenByQuote(context.Background(), "q-1")
	require.NoError(t, err)
	assert.Equal(t, "PAY-9f8e7d6c", p.Reference)

	mock.ExpectQuery(`SELECT .* FROM "payments" WHERE \(\("quote_id" = 'q-2'\)`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = adapter.GetOpenByQuote(context.Background(), "q-2")
	assert.True(t, apperrors.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}
