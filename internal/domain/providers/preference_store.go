package providers

import (
	"context"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// PreferenceStore persists display preferences per visitor key
type PreferenceStore interface {
	// Load returns the stored preferences, or nil when none exist
	Load(ctx context.Context, visitorKey string) (*entities.Preferences, error)
	Save(ctx context.Context, prefs *entities.Preferences) error
}
