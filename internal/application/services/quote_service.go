package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/catalog"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
	"github.com/zatekoja/agencysite/backend/pkg/validation"
)

// maxReferenceAttempts bounds the retries when an allocated reference is
// already taken, which only happens for rows written outside the sequence
const maxReferenceAttempts = 5

// quoteInput carries the validation rules of a quote request
type quoteInput struct {
	Name               string         `json:"name" validate:"notblank,max=120"`
	Email              string         `json:"email" validate:"required,email,max=254"`
	Phone              string         `json:"phone" validate:"phone"`
	ServiceCategory    string         `json:"service_category" validate:"notblank"`
	Budget             string         `json:"budget" validate:"notblank,max=64"`
	ProjectDescription string         `json:"project_description" validate:"min=30,max=5000"`
	Terms              bool           `json:"terms" validate:"eq=true"`
	Ratings            map[string]int `json:"ratings" validate:"dive,keys,oneof=design speed seo support price,endkeys,min=1,max=5"`
}

// QuoteService handles quote request submission and lifecycle
type QuoteService struct {
	repo     repositories.QuoteRepository
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// NewQuoteService creates a new quote service. eventBus may be nil.
func NewQuoteService(repo repositories.QuoteRepository, eventBus providers.EventBus) *QuoteService {
	return &QuoteService{
		repo:     repo,
		eventBus: eventBus,
	}
}

// SetMetrics attaches OpenTelemetry counters
func (s *QuoteService) SetMetrics(m *observability.Metrics) {
	s.metrics = m
}

// FormatQuoteReference renders a sequence number as a public reference.
// Numbers below 1000 keep the three digit form; larger ones grow.
func FormatQuoteReference(n int64) string {
	return fmt.Sprintf("CQ-%03d", n)
}

func (s *QuoteService) nextReference(ctx context.Context) (string, error) {
	n, err := s.repo.NextReferenceNumber(ctx)
	if err != nil {
		return "", err
	}
	return FormatQuoteReference(n), nil
}

// ValidateQuote checks a quote request against the submission rules
func ValidateQuote(q *entities.QuoteRequest) error {
	err := validation.Struct(quoteInput{
		Name:               q.Name,
		Email:              q.Email,
		Phone:              q.Phone,
		ServiceCategory:    q.ServiceCategory,
		Budget:             q.Budget,
		ProjectDescription: q.ProjectDescription,
		Terms:              q.Terms,
		Ratings:            q.Ratings,
	})

	if strings.TrimSpace(q.ServiceCategory) == "" {
		return err
	}
	if _, ok := catalog.MatchCategory(q.ServiceCategory); ok {
		return err
	}

	fields := map[string]string{}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		fields = appErr.Fields
	}
	fields["service_category"] = "is not a known service category"
	return apperrors.NewFieldValidationError("invalid request", fields)
}

func normalizeQuote(q *entities.QuoteRequest) {
	q.Name = strings.TrimSpace(q.Name)
	q.Email = strings.ToLower(strings.TrimSpace(q.Email))
	q.Phone = strings.TrimSpace(q.Phone)
	q.Company = strings.TrimSpace(q.Company)
	q.Budget = strings.TrimSpace(q.Budget)
	q.ProjectDescription = strings.TrimSpace(q.ProjectDescription)
	if label, ok := catalog.MatchCategory(q.ServiceCategory); ok {
		q.ServiceCategory = label
	}
}

// Create validates and stores a new quote request. The quote starts out
// pending and owned by the signed-in caller, or by a generated anonymous id.
// Its reference comes from a database sequence; a collision with a row
// written outside the sequence is retried with the next number.
func (s *QuoteService) Create(ctx context.Context, q *entities.QuoteRequest) error {
	normalizeQuote(q)
	if err := ValidateQuote(q); err != nil {
		return err
	}

	if app := entities.AppContextFrom(ctx); app.Authenticated() {
		q.UserID = app.UserID
	} else if q.UserID == "" {
		q.UserID = entities.NewAnonymousUserID()
	}

	now := time.Now().UTC()
	q.ID = uuid.New().String()
	q.Status = entities.QuoteStatusPending
	q.CreatedAt = now
	q.UpdatedAt = now

	var lastErr error
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		ref, err := s.nextReference(ctx)
		if err != nil {
			return apperrors.NewInternalError("failed to allocate a quote reference", err)
		}
		q.Reference = ref
		lastErr = s.repo.Create(ctx, q)
		if lastErr == nil {
			break
		}
		if !apperrors.IsConflict(lastErr) {
			return apperrors.NewInternalError("failed to submit quote request", lastErr)
		}
		log.Warn().Str("reference", q.Reference).Int("attempt", attempt).Msg("quote reference taken, drawing another")
	}
	if lastErr != nil {
		return apperrors.NewInternalError("failed to allocate a quote reference", lastErr)
	}

	log.Info().Str("quote_id", q.ID).Str("reference", q.Reference).Str("category", q.ServiceCategory).Msg("quote request submitted")
	observability.RecordQuoteSubmitted(ctx, s.metrics, q.ServiceCategory)
	s.publish(ctx, entities.NewQuoteEvent(entities.EventTypeQuoteSubmitted, q))
	return nil
}

// ListByUser returns the quotes of a user, newest first
func (s *QuoteService) ListByUser(ctx context.Context, userID string) ([]*entities.QuoteRequest, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("sign in to view quotes")
	}
	return s.repo.ListByUser(ctx, userID)
}

// List returns quotes matching filter. Used by administrators.
func (s *QuoteService) List(ctx context.Context, filter repositories.QuoteFilter) ([]*entities.QuoteRequest, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown quote status %q", filter.Status))
	}
	return s.repo.List(ctx, filter)
}

// Get returns a quote visible to the caller: its owner or an administrator.
// Quotes of other users are reported as not found.
func (s *QuoteService) Get(ctx context.Context, id string) (*entities.QuoteRequest, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	app := entities.AppContextFrom(ctx)
	if !app.IsAdmin && q.UserID != app.UserID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("quote with id %s not found", id))
	}
	return q, nil
}

// GetByReference returns the quote carrying a public reference
func (s *QuoteService) GetByReference(ctx context.Context, reference string) (*entities.QuoteRequest, error) {
	return s.repo.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
}

// Update applies an owner's edits. Owners may only edit pending quotes;
// administrators may edit at any status.
func (s *QuoteService) Update(ctx context.Context, id string, patch entities.QuotePatch) (*entities.QuoteRequest, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	app := entities.AppContextFrom(ctx)
	if !app.IsAdmin && q.Status != entities.QuoteStatusPending {
		return nil, apperrors.NewConflictError("quote can no longer be edited")
	}

	patch.Apply(q)
	normalizeQuote(q)
	if err := ValidateQuote(q); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateStatus moves a quote along its lifecycle. The paid status is owned by
// the payment flow and cannot be set here.
func (s *QuoteService) UpdateStatus(ctx context.Context, id string, status entities.QuoteStatus) (*entities.QuoteRequest, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown quote status %q", status))
	}
	if status == entities.QuoteStatusPaid {
		return nil, apperrors.NewValidationError("paid is set when a payment settles")
	}

	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.Status.CanTransitionTo(status) {
		return nil, apperrors.NewConflictError(fmt.Sprintf("cannot move quote from %s to %s", q.Status, status))
	}

	q.Status = status
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}

	log.Info().Str("quote_id", q.ID).Str("status", string(status)).Msg("quote status changed")
	return q, nil
}

// ListStale returns pending quotes created before now minus olderThan
func (s *QuoteService) ListStale(ctx context.Context, olderThan time.Duration) ([]*entities.QuoteRequest, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	return s.repo.List(ctx, repositories.QuoteFilter{
		Status:        entities.QuoteStatusPending,
		CreatedBefore: &cutoff,
	})
}

func (s *QuoteService) publish(ctx context.Context, event *entities.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, providers.GetEventChannel(event.Type), event); err != nil {
		log.Warn().Err(err).Str("event", string(event.Type)).Str("aggregate_id", event.AggregateID).Msg("failed to publish event")
	}
}
