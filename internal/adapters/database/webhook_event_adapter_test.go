package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockSQLX(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestWebhookEventAdapter_Record_NewEvent(t *testing.T) {
	db, mock := setupMockSQLX(t)
	adapter := NewWebhookEventAdapter(db)

	mock.ExpectExec("INSERT INTO webhook_events").
		WithArgs("evt-1", "paystack", "charge.success", sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT processed FROM webhook_events").
		WithArgs("paystack", "evt-1").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(false))

	fresh, err := adapter.Record(context.Background(), "paystack", "evt-1", "charge.success", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, fresh)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventAdapter_Record_AlreadyProcessed(t *testing.T) {
	db, mock := setupMockSQLX(t)
	adapter := NewWebhookEventAdapter(db)

	mock.ExpectExec("INSERT INTO webhook_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT processed FROM webhook_events").
		WillReturnRows(sqlmock.NewRows([]string{"processed"}).AddRow(true))

	fresh, err := adapter.Record(context.Background(), "paystack", "evt-1", "charge.success", nil)
	require.NoError(t, err)
	assert.False(t, fresh)
}

func TestWebhookEventAdapter_MarkFailed(t *testing.T) {
	db, mock := setupMockSQLX(t)
	adapter := NewWebhookEventAdapter(db)

	mock.ExpectExec("UPDATE webhook_events SET error_message").
		WithArgs("gateway down", "paystack", "evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.MarkFailed(context.Background(), "paystack", "evt-1", errors.New("gateway down")))
	require.NoError(t, mock.ExpectationsWereMet())
}
