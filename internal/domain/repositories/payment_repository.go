package repositories

import (
	"context"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// Create inserts a pending payment
	Create(ctx context.Context, payment *entities.Payment) error

	// GetByReference retrieves a payment by its checkout reference
	GetByReference(ctx context.Context, reference string) (*entities.Payment, error)

	// GetOpenByQuote retrieves the newest pending or successful payment of a
	// quote. It returns a not found error when the quote has none.
	GetOpenByQuote(ctx context.Context, quoteID string) (*entities.Payment, error)

	// ListByUser retrieves the payments of a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*entities.Payment, error)

	// UpdateStatus moves a pending payment to status. It returns a conflict
	// error when the payment already left pending.
	UpdateStatus(ctx context.Context, payment *entities.Payment) error

	// Settle marks a pending or cancelled payment successful and, when it belongs to an
	// approved quote, marks that quote paid. Both writes commit together or
	// not at all. The bool reports whether the quote moved to paid.
	Settle(ctx context.Context, payment *entities.Payment) (bool, error)

	// Totals aggregates payments for the dashboard
	Totals(ctx context.Context) (entities.PaymentTotals, error)
}
