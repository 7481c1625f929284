package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/catalog"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
	"github.com/zatekoja/agencysite/backend/pkg/pricing"
)

const (
	draftKeyPrefix = "quote:draft:"
	draftTTL       = 24 * time.Hour
	submitLockTTL  = 30 * time.Second
)

// QuoteCreator stores a finished quote request
type QuoteCreator interface {
	Create(ctx context.Context, q *entities.QuoteRequest) error
}

// WizardPrefill holds the service, type and price query parameters a
// service page links into the wizard with.
type WizardPrefill struct {
	Service string
	Type    string
	Price   string
}

// QuoteWizardService drives the multi-step quote form. Answers are merged
// into a draft kept in the cache; nothing reaches the database until Submit.
type QuoteWizardService struct {
	cache  providers.CacheProvider
	quotes QuoteCreator
}

// NewQuoteWizardService creates a new wizard service
func NewQuoteWizardService(cache providers.CacheProvider, quotes QuoteCreator) *QuoteWizardService {
	return &QuoteWizardService{cache: cache, quotes: quotes}
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

// Start opens a draft at the first step, pre-filled from prefill
func (s *QuoteWizardService) Start(ctx context.Context, prefill WizardPrefill) (*entities.QuoteDraft, error) {
	now := time.Now().UTC()
	draft := &entities.QuoteDraft{
		ID:        uuid.New().String(),
		UserID:    entities.AppContextFrom(ctx).UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	draft.SetStepIndex(0)

	applyServicePrefill(draft, strings.TrimSpace(prefill.Service), strings.TrimSpace(prefill.Type))
	if price := strings.TrimSpace(prefill.Price); price != "" {
		setBudget(draft, price)
	}

	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func applyServicePrefill(draft *entities.QuoteDraft, service, serviceType string) {
	if service != "" {
		if svc, _, ok := catalog.Lookup(service); ok {
			draft.ServiceCategory = svc.Category
			draft.ServiceType = svc.Title
			if serviceType != "" {
				draft.ServiceType = matchSubService(svc, serviceType)
			}
			return
		}
		if label, ok := catalog.MatchCategory(service); ok {
			draft.ServiceCategory = label
		}
	}

	if serviceType == "" {
		return
	}
	if draft.ServiceCategory == "" {
		if svc, _, ok := catalog.Lookup(serviceType); ok {
			draft.ServiceCategory = svc.Category
			draft.ServiceType = matchSubService(svc, serviceType)
			return
		}
	}
	draft.ServiceType = serviceType
}

// matchSubService returns the canonical spelling of serviceType when it names
// a sub-service of svc
func matchSubService(svc catalog.Service, serviceType string) string {
	key := catalog.Normalize(serviceType)
	if key == catalog.Normalize(svc.ID) || key == catalog.Normalize(svc.Title) {
		return svc.Title
	}
	for _, sub := range svc.SubServices {
		if catalog.Normalize(sub) == key {
			return sub
		}
	}
	return serviceType
}

func setBudget(draft *entities.QuoteDraft, raw string) {
	if b, ok := pricing.ParseBudget(raw); ok {
		draft.Budget = b.Value
		draft.BudgetCustom = false
		return
	}
	draft.Budget = raw
	draft.BudgetCustom = true
}

// Get returns a draft
func (s *QuoteWizardService) Get(ctx context.Context, id string) (*entities.QuoteDraft, error) {
	data, err := s.cache.Get(ctx, draftKey(id))
	if err != nil {
		if errors.Is(err, providers.ErrCacheMiss) {
			return nil, apperrors.NewNotFoundError("quote draft not found or expired")
		}
		return nil, apperrors.NewInternalError("failed to load quote draft", err)
	}

	var draft entities.QuoteDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, apperrors.NewInternalError("failed to decode quote draft", err)
	}
	return &draft, nil
}

// Update merges the answers of step into the draft. step must be the step the
// draft is on; an empty step means the current one. Fields that belong to
// other steps are ignored.
func (s *QuoteWizardService) Update(ctx context.Context, id string, step entities.WizardStep, fields entities.DraftFields) (*entities.QuoteDraft, error) {
	draft, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}

	if step == "" {
		step = draft.Step
	}
	if step.Index() < 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown wizard step %q", step))
	}
	if step != draft.Step {
		return nil, apperrors.NewConflictError(fmt.Sprintf("draft is at step %s", draft.Step))
	}

	mergeStep(draft, step, fields)
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func mergeStep(draft *entities.QuoteDraft, step entities.WizardStep, f entities.DraftFields) {
	switch step {
	case entities.StepServiceSelection:
		if f.ServiceCategory != nil {
			category := strings.TrimSpace(*f.ServiceCategory)
			if label, ok := catalog.MatchCategory(category); ok {
				category = label
			}
			draft.ServiceCategory = category
		}
		if f.ServiceType != nil {
			draft.ServiceType = strings.TrimSpace(*f.ServiceType)
		}
	case entities.StepBudgetSelection:
		if f.Budget != nil {
			if raw := strings.TrimSpace(*f.Budget); raw != "" {
				setBudget(draft, raw)
			} else {
				draft.Budget = ""
				draft.BudgetCustom = false
			}
		}
	case entities.StepProjectDetails:
		setString(&draft.Name, f.Name)
		setString(&draft.Email, f.Email)
		setString(&draft.Phone, f.Phone)
		setString(&draft.Company, f.Company)
		setString(&draft.Timeline, f.Timeline)
		setString(&draft.ProjectDescription, f.ProjectDescription)
		setString(&draft.Goals, f.Goals)
		setString(&draft.TargetAudience, f.TargetAudience)
		if f.Features != nil {
			draft.Features = append([]string(nil), f.Features...)
		}
		if f.Ratings != nil {
			draft.Ratings = make(map[string]int, len(f.Ratings))
			for k, v := range f.Ratings {
				draft.Ratings[k] = v
			}
		}
		if f.Terms != nil {
			draft.Terms = *f.Terms
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// missingFields lists the required answers of step the draft lacks
func missingFields(draft *entities.QuoteDraft, step entities.WizardStep) map[string]string {
	missing := map[string]string{}
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing[field] = "is required"
		}
	}

	switch step {
	case entities.StepServiceSelection:
		require("service_category", draft.ServiceCategory)
	case entities.StepBudgetSelection:
		require("budget", draft.Budget)
	case entities.StepProjectDetails:
		require("name", draft.Name)
		require("email", draft.Email)
		require("phone", draft.Phone)
		require("project_description", draft.ProjectDescription)
		if !draft.Terms {
			missing["terms"] = "must be accepted"
		}
	}
	return missing
}

// Next advances the draft one step once the current step is complete
func (s *QuoteWizardService) Next(ctx context.Context, id string) (*entities.QuoteDraft, error) {
	draft, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}

	if draft.Step == entities.StepConfirmation {
		return nil, apperrors.NewValidationError("already at the last step")
	}
	if missing := missingFields(draft, draft.Step); len(missing) > 0 {
		return nil, apperrors.NewFieldValidationError(fmt.Sprintf("step %s is incomplete", draft.Step), missing)
	}

	draft.SetStepIndex(draft.StepIndex + 1)
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Back moves the draft one step back. At the first step it does nothing.
func (s *QuoteWizardService) Back(ctx context.Context, id string) (*entities.QuoteDraft, error) {
	draft, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.StepIndex == 0 {
		return draft, nil
	}

	draft.SetStepIndex(draft.StepIndex - 1)
	if err := s.save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Submit turns a draft at the confirmation step into a stored quote request.
// The quote is created once; submitting an already submitted draft returns
// it unchanged with created false. When the create fails the draft stays at
// confirmation so the visitor can retry.
func (s *QuoteWizardService) Submit(ctx context.Context, id string) (draft *entities.QuoteDraft, created bool, err error) {
	draft, err = s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if draft.Submitted() {
		return draft, false, nil
	}
	if draft.Step != entities.StepConfirmation {
		return nil, false, apperrors.NewValidationError("quote can only be submitted from the confirmation step")
	}

	lockKey := draftKey(id) + ":submit"
	n, err := s.cache.Increment(ctx, lockKey, int(submitLockTTL.Seconds()))
	if err != nil {
		return nil, false, apperrors.NewInternalError("failed to lock quote draft", err)
	}
	if n > 1 {
		return nil, false, apperrors.NewConflictError("quote submission already in progress")
	}
	defer func() {
		if delErr := s.cache.Delete(context.WithoutCancel(ctx), lockKey); delErr != nil {
			log.Warn().Err(delErr).Str("draft_id", id).Msg("failed to release draft submit lock")
		}
	}()

	// another submit may have completed between the first read and the lock
	draft, err = s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if draft.Submitted() {
		return draft, false, nil
	}

	quote := draft.ToQuoteRequest()
	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, false, err
	}

	draft.QuoteID = quote.ID
	draft.QuoteReference = quote.Reference
	if draft.UserID == "" {
		draft.UserID = quote.UserID
	}
	if err := s.save(ctx, draft); err != nil {
		log.Error().Err(err).Str("draft_id", id).Str("reference", quote.Reference).Msg("quote stored but draft could not be marked submitted")
	}
	return draft, true, nil
}

func (s *QuoteWizardService) editable(ctx context.Context, id string) (*entities.QuoteDraft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Submitted() {
		return nil, apperrors.NewConflictError("quote draft was already submitted")
	}
	return draft, nil
}

func (s *QuoteWizardService) save(ctx context.Context, draft *entities.QuoteDraft) error {
	draft.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(draft)
	if err != nil {
		return apperrors.NewInternalError("failed to encode quote draft", err)
	}
	if err := s.cache.Set(ctx, draftKey(draft.ID), data, int(draftTTL.Seconds())); err != nil {
		return apperrors.NewInternalError("failed to save quote draft", err)
	}
	return nil
}
