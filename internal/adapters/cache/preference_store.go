package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
)

const (
	preferenceKeyPrefix = "prefs:"
	preferenceTTL       = 365 * 24 * time.Hour
)

// PreferenceStore keeps visitor preferences in a cache provider
type PreferenceStore struct {
	cache providers.CacheProvider
}

var _ providers.PreferenceStore = (*PreferenceStore)(nil)

// NewPreferenceStore creates a cache backed preference store
func NewPreferenceStore(cache providers.CacheProvider) *PreferenceStore {
	return &PreferenceStore{cache: cache}
}

// Load returns the stored preferences, or nil when none exist
func (s *PreferenceStore) Load(ctx context.Context, visitorKey string) (*entities.Preferences, error) {
	data, err := s.cache.Get(ctx, preferenceKeyPrefix+visitorKey)
	if err != nil {
		if errors.Is(err, providers.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var prefs entities.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &prefs, nil
}

// Save stores prefs under its visitor key
func (s *PreferenceStore) Save(ctx context.Context, prefs *entities.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	return s.cache.Set(ctx, preferenceKeyPrefix+prefs.VisitorKey, data, int(preferenceTTL.Seconds()))
}
