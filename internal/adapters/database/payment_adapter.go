package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

const paymentTable = "payments"

var paymentColumns = []interface{}{
	"id", "user_id", "quote_id", "reference", "email", "amount", "amount_minor",
	"currency", "status", "gateway_reference", "channel", "paid_at",
	"created_at", "updated_at",
}

// PaymentAdapter implements PaymentRepository
type PaymentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.PaymentRepository = (*PaymentAdapter)(nil)

// NewPaymentAdapter creates a new payment adapter
func NewPaymentAdapter(client *postgres.Client) *PaymentAdapter {
	return &PaymentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a pending payment
func (a *PaymentAdapter) Create(ctx context.Context, payment *entities.Payment) error {
	record := goqu.Record{
		"id":                payment.ID,
		"user_id":           payment.UserID,
		"quote_id":          nullStringPtr(payment.QuoteID),
		"reference":         payment.Reference,
		"email":             payment.Email,
		"amount":            payment.Amount,
		"amount_minor":      payment.AmountMinor,
		"currency":          payment.Currency,
		"status":            payment.Status,
		"gateway_reference": nullString(payment.GatewayReference),
		"channel":           nullString(payment.Channel),
		"paid_at":           nullTime(payment.PaidAt),
		"created_at":        payment.CreatedAt,
		"updated_at":        payment.UpdatedAt,
	}

	query, args, err := a.db.Insert(paymentTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("payment %s conflicts with an existing payment", payment.Reference))
		}
		return apperrors.NewInternalError("failed to create payment", err)
	}
	return nil
}

// GetByReference retrieves a payment by its checkout reference
func (a *PaymentAdapter) GetByReference(ctx context.Context, reference string) (*entities.Payment, error) {
	query, args, err := a.db.Select(paymentColumns...).From(paymentTable).
		Where(goqu.Ex{"reference": reference}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return scanPayment(a.client.DB().QueryRowContext(ctx, query, args...))
}

// GetOpenByQuote retrieves the newest pending or successful payment of a quote
func (a *PaymentAdapter) GetOpenByQuote(ctx context.Context, quoteID string) (*entities.Payment, error) {
	query, args, err := a.db.Select(paymentColumns...).From(paymentTable).
		Where(
			goqu.C("quote_id").Eq(quoteID),
			goqu.C("status").In(entities.PaymentStatusPending, entities.PaymentStatusSuccess),
		).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return scanPayment(a.client.DB().QueryRowContext(ctx, query, args...))
}

// ListByUser retrieves the payments of a user, newest first
func (a *PaymentAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.Payment, error) {
	query, args, err := a.db.Select(paymentColumns...).From(paymentTable).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list payments", err)
	}
	defer rows.Close()

	payments := make([]*entities.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate payments", err)
	}
	return payments, nil
}

// UpdateStatus moves a pending payment to payment.Status
func (a *PaymentAdapter) UpdateStatus(ctx context.Context, payment *entities.Payment) error {
	payment.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update(paymentTable).
		Set(goqu.Record{
			"status":            payment.Status,
			"gateway_reference": nullString(payment.GatewayReference),
			"channel":           nullString(payment.Channel),
			"updated_at":        payment.UpdatedAt,
		}).
		Where(goqu.Ex{"reference": payment.Reference, "status": entities.PaymentStatusPending}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update payment", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("payment %s is no longer pending", payment.Reference))
	}
	return nil
}

// Settle marks a pending or cancelled payment successful and its approved
// quote paid in one transaction.
func (a *PaymentAdapter) Settle(ctx context.Context, payment *entities.Payment) (bool, error) {
	now := time.Now().UTC()
	payment.Status = entities.PaymentStatusSuccess
	payment.UpdatedAt = now
	if payment.PaidAt == nil {
		payment.PaidAt = &now
	}

	paymentQuery, paymentArgs, err := a.db.Update(paymentTable).
		Set(goqu.Record{
			"status":            payment.Status,
			"gateway_reference": nullString(payment.GatewayReference),
			"channel":           nullString(payment.Channel),
			"paid_at":           nullTime(payment.PaidAt),
			"updated_at":        payment.UpdatedAt,
		}).
		Where(
			goqu.C("reference").Eq(payment.Reference),
			goqu.C("status").In(entities.PaymentStatusPending, entities.PaymentStatusCancelled),
		).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build settle query", err)
	}

	quotePaid := false
	err = a.client.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, paymentQuery, paymentArgs...)
		if err != nil {
			return apperrors.NewInternalError("failed to settle payment", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return apperrors.NewInternalError("failed to get rows affected", err)
		} else if n == 0 {
			return apperrors.NewConflictError(fmt.Sprintf("payment %s is already settled or failed", payment.Reference))
		}

		if payment.QuoteID == nil {
			return nil
		}

		quoteQuery, quoteArgs, err := a.db.Update(quoteTable).
			Set(goqu.Record{"status": entities.QuoteStatusPaid, "updated_at": now}).
			Where(goqu.Ex{"id": *payment.QuoteID, "status": entities.QuoteStatusApproved}).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build quote update query", err)
		}

		result, err = tx.ExecContext(ctx, quoteQuery, quoteArgs...)
		if err != nil {
			return apperrors.NewInternalError("failed to mark quote paid", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewInternalError("failed to get rows affected", err)
		}
		quotePaid = n > 0
		if !quotePaid {
			log.Warn().
				Str("payment_reference", payment.Reference).
				Str("quote_id", *payment.QuoteID).
				Msg("settled payment for a quote that is not awaiting payment")
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return quotePaid, nil
}

// Totals aggregates payments by status and currency
func (a *PaymentAdapter) Totals(ctx context.Context) (entities.PaymentTotals, error) {
	totals := entities.PaymentTotals{SettledAmount: make(map[string]float64)}

	query, args, err := a.db.Select(
		goqu.C("status"),
		goqu.C("currency"),
		goqu.COUNT("*"),
		goqu.COALESCE(goqu.SUM("amount"), 0),
	).
		From(paymentTable).
		Where(goqu.C("status").In(entities.PaymentStatusSuccess, entities.PaymentStatusPending)).
		GroupBy(goqu.C("status"), goqu.C("currency")).
		ToSQL()
	if err != nil {
		return totals, apperrors.NewInternalError("failed to build totals query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return totals, apperrors.NewInternalError("failed to aggregate payments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, currency string
		var count int
		var sum float64
		if err := rows.Scan(&status, &currency, &count, &sum); err != nil {
			return totals, apperrors.NewInternalError("failed to scan payment totals", err)
		}
		switch entities.PaymentStatus(status) {
		case entities.PaymentStatusSuccess:
			totals.SettledCount += count
			totals.SettledAmount[currency] += sum
		case entities.PaymentStatusPending:
			totals.PendingCount += count
		}
	}
	if err := rows.Err(); err != nil {
		return totals, apperrors.NewInternalError("failed to iterate payment totals", err)
	}
	return totals, nil
}

func scanPayment(row rowScanner) (*entities.Payment, error) {
	p := &entities.Payment{}
	var quoteID, gatewayReference, channel sql.NullString
	var paidAt sql.NullTime
	var status string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&quoteID,
		&p.Reference,
		&p.Email,
		&p.Amount,
		&p.AmountMinor,
		&p.Currency,
		&status,
		&gatewayReference,
		&channel,
		&paidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("payment not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan payment", err)
	}

	p.QuoteID = stringPtr(quoteID)
	p.Status = entities.PaymentStatus(status)
	p.GatewayReference = gatewayReference.String
	p.Channel = channel.String
	p.PaidAt = timePtr(paidAt)
	return p, nil
}
