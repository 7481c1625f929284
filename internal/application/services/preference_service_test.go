package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/agencysite/backend/internal/adapters/cache"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

func TestPreferenceService_ToggleTwiceRestoresTheme(t *testing.T) {
	for _, start := range []entities.Theme{entities.ThemeLight, entities.ThemeDark} {
		t.Run(string(start), func(t *testing.T) {
			service := services.NewPreferenceService(cache.NewPreferenceStore(cache.NewMemoryAdapter()))
			ctx := context.Background()

			_, err := service.SetTheme(ctx, "visitor-1", start)
			require.NoError(t, err)

			once, err := service.ToggleTheme(ctx, "visitor-1")
			require.NoError(t, err)
			assert.Equal(t, start.Toggled(), once.Theme)

			twice, err := service.ToggleTheme(ctx, "visitor-1")
			require.NoError(t, err)
			assert.Equal(t, start, twice.Theme)

			stored, err := service.Get(ctx, "visitor-1")
			require.NoError(t, err)
			assert.Equal(t, start, stored.Theme)
		})
	}
}

func TestPreferenceService_Defaults(t *testing.T) {
	service := services.NewPreferenceService(cache.NewPreferenceStore(cache.NewMemoryAdapter()))
	ctx := context.Background()

	prefs, err := service.Get(ctx, "new-visitor")
	require.NoError(t, err)
	assert.Equal(t, entities.ThemeLight, prefs.Theme)

	_, err = service.Get(ctx, " ")
	assert.True(t, apperrors.IsValidation(err))

	_, err = service.SetTheme(ctx, "new-visitor", "sepia")
	assert.True(t, apperrors.IsValidation(err))
}
