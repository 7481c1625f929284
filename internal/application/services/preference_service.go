package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

// DefaultTheme is used until a visitor picks one
const DefaultTheme = entities.ThemeLight

// PreferenceService manages per-visitor display preferences
type PreferenceService struct {
	store providers.PreferenceStore
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(store providers.PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store}
}

// Get returns the preferences of visitorKey, falling back to the defaults
func (s *PreferenceService) Get(ctx context.Context, visitorKey string) (*entities.Preferences, error) {
	visitorKey = strings.TrimSpace(visitorKey)
	if visitorKey == "" {
		return nil, apperrors.NewValidationError("a visitor id is required")
	}

	prefs, err := s.store.Load(ctx, visitorKey)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load preferences", err)
	}
	if prefs == nil {
		return &entities.Preferences{VisitorKey: visitorKey, Theme: DefaultTheme}, nil
	}
	return prefs, nil
}

// SetTheme stores theme for visitorKey
func (s *PreferenceService) SetTheme(ctx context.Context, visitorKey string, theme entities.Theme) (*entities.Preferences, error) {
	if !theme.Valid() {
		return nil, apperrors.NewFieldValidationError("invalid request", map[string]string{
			"theme": fmt.Sprintf("must be %s or %s", entities.ThemeLight, entities.ThemeDark),
		})
	}
	prefs, err := s.Get(ctx, visitorKey)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, prefs, theme)
}

// ToggleTheme flips between light and dark
func (s *PreferenceService) ToggleTheme(ctx context.Context, visitorKey string) (*entities.Preferences, error) {
	prefs, err := s.Get(ctx, visitorKey)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, prefs, prefs.Theme.Toggled())
}

func (s *PreferenceService) save(ctx context.Context, prefs *entities.Preferences, theme entities.Theme) (*entities.Preferences, error) {
	prefs.Theme = theme
	prefs.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, prefs); err != nil {
		return nil, apperrors.NewInternalError("failed to save preferences", err)
	}
	return prefs, nil
}
