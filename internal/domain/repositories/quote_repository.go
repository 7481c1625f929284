package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// QuoteRepository defines the interface for quote request persistence
type QuoteRepository interface {
	// Create inserts a quote. A taken reference is reported as a conflict error.
	Create(ctx context.Context, quote *entities.QuoteRequest) error

	// NextReferenceNumber draws the next number of the quote reference
	// sequence. Numbers are never handed out twice.
	NextReferenceNumber(ctx context.Context) (int64, error)

	// GetByID retrieves a quote by ID
	GetByID(ctx context.Context, id string) (*entities.QuoteRequest, error)

	// GetByReference retrieves a quote by its public reference
	GetByReference(ctx context.Context, reference string) (*entities.QuoteRequest, error)

	// ListByUser retrieves the quotes owned by a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*entities.QuoteRequest, error)

	// List retrieves quotes matching filter, newest first
	List(ctx context.Context, filter QuoteFilter) ([]*entities.QuoteRequest, error)

	// Update persists the mutable fields and status of a quote
	Update(ctx context.Context, quote *entities.QuoteRequest) error

	// CountByStatus returns the number of quotes per status
	CountByStatus(ctx context.Context) (map[entities.QuoteStatus]int, error)
}

// QuoteFilter defines filters for listing quotes
type QuoteFilter struct {
	Status        entities.QuoteStatus
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}
