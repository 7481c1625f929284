package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/agencysite/backend/internal/adapters/cache"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

// interleavingCache runs beforeLock the first time a submit lock is taken,
// letting a test slip a competing submit in after the draft was read
type interleavingCache struct {
	*cache.MemoryAdapter
	beforeLock func()
}

func (c *interleavingCache) Increment(ctx context.Context, key string, expirationSeconds int) (int64, error) {
	if hook := c.beforeLock; hook != nil && strings.HasSuffix(key, ":submit") {
		c.beforeLock = nil
		hook()
	}
	return c.MemoryAdapter.Increment(ctx, key, expirationSeconds)
}

func newWizard(repo *MockQuoteRepository) *services.QuoteWizardService {
	return services.NewQuoteWizardService(cache.NewMemoryAdapter(), services.NewQuoteService(repo, nil))
}

// completeDraft walks a fresh draft to the confirmation step
func completeDraft(t *testing.T, wizard *services.QuoteWizardService) *entities.QuoteDraft {
	t.Helper()
	ctx := context.Background()

	draft, err := wizard.Start(ctx, services.WizardPrefill{})
	require.NoError(t, err)

	_, err = wizard.Update(ctx, draft.ID, entities.StepServiceSelection, entities.DraftFields{
		ServiceCategory: strPtr("Web & App Development"),
		ServiceType:     strPtr("Website Development"),
	})
	require.NoError(t, err)
	_, err = wizard.Next(ctx, draft.ID)
	require.NoError(t, err)

	_, err = wizard.Update(ctx, draft.ID, entities.StepBudgetSelection, entities.DraftFields{Budget: strPtr("5000-10000")})
	require.NoError(t, err)
	_, err = wizard.Next(ctx, draft.ID)
	require.NoError(t, err)

	_, err = wizard.Update(ctx, draft.ID, entities.StepProjectDetails, entities.DraftFields{
		Name:               strPtr("Ada Lovelace"),
		Email:              strPtr("ada@example.com"),
		Phone:              strPtr("+1 (555) 010-2000"),
		ProjectDescription: strPtr("A marketing site with a booking flow and a small CMS for the team."),
		Ratings:            map[string]int{"design": 5, "price": 3},
		Terms:              boolPtr(true),
	})
	require.NoError(t, err)
	draft, err = wizard.Next(ctx, draft.ID)
	require.NoError(t, err)
	require.Equal(t, entities.StepConfirmation, draft.Step)
	return draft
}

func TestQuoteWizard_StartPrefill(t *testing.T) {
	wizard := newWizard(new(MockQuoteRepository))
	ctx := context.Background()

	tests := []struct {
		name         string
		prefill      services.WizardPrefill
		category     string
		serviceType  string
		budget       string
		budgetCustom bool
	}{
		{
			name:        "logo keyword and budget label",
			prefill:     services.WizardPrefill{Service: "logo", Price: "$1,000 - $5,000"},
			category:    "Branding & Design",
			serviceType: "Logo Design",
			budget:      "1000-5000",
		},
		{
			name:        "service path with sub-service type",
			prefill:     services.WizardPrefill{Service: "/services/seo", Type: "local seo"},
			category:    "Digital Marketing",
			serviceType: "Local SEO",
		},
		{
			name:        "type alone resolves the category",
			prefill:     services.WizardPrefill{Type: "Landing Pages"},
			category:    "Web & App Development",
			serviceType: "Landing Pages",
		},
		{
			name:         "ad hoc price is kept",
			prefill:      services.WizardPrefill{Service: "video-production", Price: "about 3 grand"},
			category:     "Content & Media",
			serviceType:  "Video Production",
			budget:       "about 3 grand",
			budgetCustom: true,
		},
		{
			name:    "unknown service leaves the selection empty",
			prefill: services.WizardPrefill{Service: "quantum-computing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft, err := wizard.Start(ctx, tt.prefill)
			require.NoError(t, err)
			assert.Equal(t, entities.StepServiceSelection, draft.Step)
			assert.Equal(t, tt.category, draft.ServiceCategory)
			assert.Equal(t, tt.serviceType, draft.ServiceType)
			assert.Equal(t, tt.budget, draft.Budget)
			assert.Equal(t, tt.budgetCustom, draft.BudgetCustom)

			stored, err := wizard.Get(ctx, draft.ID)
			require.NoError(t, err)
			assert.Equal(t, draft.ServiceCategory, stored.ServiceCategory)
		})
	}
}

func TestQuoteWizard_NextRequiresStepFields(t *testing.T) {
	wizard := newWizard(new(MockQuoteRepository))
	ctx := context.Background()

	draft, err := wizard.Start(ctx, services.WizardPrefill{})
	require.NoError(t, err)

	_, err = wizard.Next(ctx, draft.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Fields, "service_category")

	stored, err := wizard.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.StepIndex)
}

func TestQuoteWizard_ProjectDetailsGuard(t *testing.T) {
	wizard := newWizard(new(MockQuoteRepository))
	ctx := context.Background()

	draft, err := wizard.Start(ctx, services.WizardPrefill{Service: "seo", Price: "not sure"})
	require.NoError(t, err)
	_, err = wizard.Next(ctx, draft.ID)
	require.NoError(t, err)
	_, err = wizard.Next(ctx, draft.ID)
	require.NoError(t, err)

	_, err = wizard.Update(ctx, draft.ID, "", entities.DraftFields{Name: strPtr("Ada")})
	require.NoError(t, err)

	_, err = wizard.Next(ctx, draft.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.NotContains(t, appErr.Fields, "name")
	for _, field := range []string{"email", "phone", "project_description", "terms"} {
		assert.Contains(t, appErr.Fields, field)
	}
}

func TestQuoteWizard_UpdateOnlyTouchesCurrentStep(t *testing.T) {
	wizard := newWizard(new(MockQuoteRepository))
	ctx := context.Background()

	draft, err := wizard.Start(ctx, services.WizardPrefill{})
	require.NoError(t, err)

	_, err = wizard.Update(ctx, draft.ID, entities.StepBudgetSelection, entities.DraftFields{Budget: strPtr("1000-5000")})
	assert.True(t, apperrors.IsConflict(err))

	got, err := wizard.Update(ctx, draft.ID, entities.StepServiceSelection, entities.DraftFields{
		ServiceCategory: strPtr("digital marketing"),
		Budget:          strPtr("1000-5000"),
		Name:            strPtr("Ada"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Digital Marketing", got.ServiceCategory)
	assert.Empty(t, got.Budget)
	assert.Empty(t, got.Name)

	_, err = wizard.Update(ctx, draft.ID, "summary", entities.DraftFields{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestQuoteWizard_Back(t *testing.T) {
	wizard := newWizard(new(MockQuoteRepository))
	ctx := context.Background()

	draft, err := wizard.Start(ctx, services.WizardPrefill{Service: "branding"})
	require.NoError(t, err)

	same, err := wizard.Back(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StepServiceSelection, same.Step)

	_, err = wizard.Next(ctx, draft.ID)
	require.NoError(t, err)
	back, err := wizard.Back(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StepServiceSelection, back.Step)
	assert.Equal(t, "Branding & Design", back.ServiceCategory)
}

func TestQuoteWizard_Submit(t *testing.T) {
	t.Run("complete wizard creates exactly one quote", func(t *testing.T) {
		repo := new(MockQuoteRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		wizard := newWizard(repo)
		ctx := context.Background()

		draft := completeDraft(t, wizard)

		submitted, created, err := wizard.Submit(ctx, draft.ID)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Regexp(t, referencePattern, submitted.QuoteReference)
		assert.NotEmpty(t, submitted.QuoteID)

		again, created, err := wizard.Submit(ctx, draft.ID)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, submitted.QuoteReference, again.QuoteReference)

		repo.AssertNumberOfCalls(t, "Create", 1)
		stored := repo.Calls[0].Arguments.Get(1).(*entities.QuoteRequest)
		assert.Equal(t, entities.QuoteStatusPending, stored.Status)
		assert.Equal(t, "5000-10000", stored.Budget)
		assert.Equal(t, 5, stored.Ratings["design"])

		_, err = wizard.Next(ctx, draft.ID)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("submit that lost the race to the lock returns the stored quote", func(t *testing.T) {
		repo := new(MockQuoteRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		store := &interleavingCache{MemoryAdapter: cache.NewMemoryAdapter()}
		wizard := services.NewQuoteWizardService(store, services.NewQuoteService(repo, nil))
		ctx := context.Background()

		draft := completeDraft(t, wizard)

		var winner *entities.QuoteDraft
		store.beforeLock = func() {
			var created bool
			var err error
			winner, created, err = wizard.Submit(ctx, draft.ID)
			require.NoError(t, err)
			require.True(t, created)
		}

		late, created, err := wizard.Submit(ctx, draft.ID)
		require.NoError(t, err)
		assert.False(t, created)
		require.NotNil(t, winner)
		assert.Equal(t, winner.QuoteReference, late.QuoteReference)
		repo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("failed write keeps the draft at confirmation", func(t *testing.T) {
		repo := new(MockQuoteRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.NewInternalError("failed to insert quote", assert.AnError))
		wizard := newWizard(repo)
		ctx := context.Background()

		draft := completeDraft(t, wizard)

		_, created, err := wizard.Submit(ctx, draft.ID)
		require.Error(t, err)
		assert.False(t, created)

		stored, err := wizard.Get(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.StepConfirmation, stored.Step)
		assert.False(t, stored.Submitted())
	})

	t.Run("only from confirmation", func(t *testing.T) {
		repo := new(MockQuoteRepository)
		wizard := newWizard(repo)
		ctx := context.Background()

		draft, err := wizard.Start(ctx, services.WizardPrefill{Service: "seo"})
		require.NoError(t, err)

		_, _, err = wizard.Submit(ctx, draft.ID)
		assert.True(t, apperrors.IsValidation(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("next at confirmation is rejected", func(t *testing.T) {
		wizard := newWizard(new(MockQuoteRepository))
		draft := completeDraft(t, wizard)

		_, err := wizard.Next(context.Background(), draft.ID)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestQuoteWizard_UnknownDraft(t *testing.T) {
	wizard := newWizard(new(MockQuoteRepository))
	_, err := wizard.Get(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
