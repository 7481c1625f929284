package repositories

import (
	"context"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// ContactRepository defines the interface for contact form messages.
type ContactRepository interface {
	Create(ctx context.Context, message *entities.ContactMessage) error
}
