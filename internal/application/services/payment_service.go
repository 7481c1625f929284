package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/observability"
	"github.com/zatekoja/agencysite/backend/pkg/config"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
	"github.com/zatekoja/agencysite/backend/pkg/pricing"
	"github.com/zatekoja/agencysite/backend/pkg/validation"
)

// Webhook events acted on
const (
	WebhookChargeSuccess = "charge.success"
)

// CheckoutRequest starts a payment for an approved quote, or an ad hoc
// payment when QuoteID is empty
type CheckoutRequest struct {
	QuoteID  string  `json:"quote_id"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,alpha"`
	Email    string  `json:"email" validate:"required,email"`
}

// PaymentService handles checkout, verification and settlement of payments
type PaymentService struct {
	repo        repositories.PaymentRepository
	quoteRepo   repositories.QuoteRepository
	webhooks    repositories.WebhookEventRepository
	gateway     providers.PaymentGateway
	eventBus    providers.EventBus
	metrics     *observability.Metrics
	currency    string
	callbackURL string
}

// NewPaymentService creates a new payment service. eventBus may be nil.
func NewPaymentService(
	repo repositories.PaymentRepository,
	quoteRepo repositories.QuoteRepository,
	webhooks repositories.WebhookEventRepository,
	gateway providers.PaymentGateway,
	eventBus providers.EventBus,
	cfg config.PaymentsConfig,
) *PaymentService {
	currency := strings.ToUpper(cfg.Currency)
	if currency == "" {
		currency = "USD"
	}
	return &PaymentService{
		repo:        repo,
		quoteRepo:   quoteRepo,
		webhooks:    webhooks,
		gateway:     gateway,
		eventBus:    eventBus,
		currency:    currency,
		callbackURL: cfg.CallbackURL,
	}
}

// SetMetrics attaches OpenTelemetry counters
func (s *PaymentService) SetMetrics(m *observability.Metrics) {
	s.metrics = m
}

func newPaymentReference() string {
	return "PAY-" + strings.ToUpper(uuid.NewString()[:8])
}

// Checkout stores a pending payment and opens the charge on the gateway
func (s *PaymentService) Checkout(ctx context.Context, req CheckoutRequest) (*entities.Checkout, error) {
	app := entities.AppContextFrom(ctx)
	if !app.Authenticated() {
		return nil, apperrors.NewUnauthorizedError("sign in to make a payment")
	}
	if req.Email == "" {
		req.Email = app.Email
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.currency
	}

	var quoteID *string
	if req.QuoteID != "" {
		q, err := s.quoteRepo.GetByID(ctx, req.QuoteID)
		if err != nil {
			return nil, err
		}
		if !app.IsAdmin && q.UserID != app.UserID {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("quote with id %s not found", req.QuoteID))
		}
		if q.Status != entities.QuoteStatusApproved {
			return nil, apperrors.NewConflictError(fmt.Sprintf("quote %s is %s; only approved quotes can be paid", q.Reference, q.Status))
		}
		if err := s.ensureNoOpenPayment(ctx, q); err != nil {
			return nil, err
		}
		quoteID = &q.ID
	}

	now := time.Now().UTC()
	payment := &entities.Payment{
		ID:          uuid.New().String(),
		UserID:      app.UserID,
		QuoteID:     quoteID,
		Reference:   newPaymentReference(),
		Email:       req.Email,
		Amount:      req.Amount,
		AmountMinor: pricing.ToMinorUnits(req.Amount),
		Currency:    currency,
		Status:      entities.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	metadata := map[string]string{"payment_id": payment.ID, "user_id": payment.UserID}
	if quoteID != nil {
		metadata["quote_id"] = *quoteID
	}
	session, err := s.gateway.Initialize(ctx, providers.ChargeRequest{
		Reference:   payment.Reference,
		Email:       payment.Email,
		AmountMinor: payment.AmountMinor,
		Currency:    payment.Currency,
		CallbackURL: s.callbackURL,
		Metadata:    metadata,
	})
	if err != nil {
		payment.Status = entities.PaymentStatusFailed
		if updErr := s.repo.UpdateStatus(ctx, payment); updErr != nil {
			log.Error().Err(updErr).Str("reference", payment.Reference).Msg("failed to mark payment failed")
		}
		return nil, err
	}

	log.Info().Str("reference", payment.Reference).Int64("amount_minor", payment.AmountMinor).Str("currency", payment.Currency).Msg("checkout opened")
	return &entities.Checkout{
		Payment:          payment,
		PublicKey:        s.gateway.PublicKey(),
		Reference:        payment.Reference,
		AmountMinor:      payment.AmountMinor,
		Currency:         payment.Currency,
		Email:            payment.Email,
		AuthorizationURL: session.AuthorizationURL,
		AccessCode:       session.AccessCode,
	}, nil
}

// ensureNoOpenPayment rejects a checkout while the quote already has a
// payment in flight or settled. A pending payment is reconciled first so a
// charge that failed on the gateway does not block a retry.
func (s *PaymentService) ensureNoOpenPayment(ctx context.Context, q *entities.QuoteRequest) error {
	open, err := s.repo.GetOpenByQuote(ctx, q.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if open.Status == entities.PaymentStatusPending {
		if open, err = s.reconcile(ctx, open); err != nil {
			return err
		}
	}
	switch open.Status {
	case entities.PaymentStatusSuccess:
		return apperrors.NewConflictError(fmt.Sprintf("quote %s is already paid by %s", q.Reference, open.Reference))
	case entities.PaymentStatusPending:
		return apperrors.NewConflictError(fmt.Sprintf("payment %s for quote %s is still open; verify or cancel it first", open.Reference, q.Reference))
	}
	return nil
}

// Get returns a payment visible to the caller
func (s *PaymentService) Get(ctx context.Context, reference string) (*entities.Payment, error) {
	p, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	app := entities.AppContextFrom(ctx)
	if !app.IsAdmin && p.UserID != app.UserID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment %s not found", reference))
	}
	return p, nil
}

// ListByUser returns the payments of a user
func (s *PaymentService) ListByUser(ctx context.Context, userID string) ([]*entities.Payment, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("sign in to view payments")
	}
	return s.repo.ListByUser(ctx, userID)
}

// Verify asks the gateway for the outcome of a charge and records it. It is
// safe to call repeatedly; a payment that already settled or failed is
// returned as is. A cancelled payment is still verified so a charge the
// gateway completed is not lost.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*entities.Payment, error) {
	p, err := s.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, p)
}

func (s *PaymentService) reconcile(ctx context.Context, p *entities.Payment) (*entities.Payment, error) {
	if p.Status.Final() {
		return p, nil
	}

	result, err := s.gateway.Verify(ctx, p.Reference)
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case providers.ChargeStatusSuccess:
		if result.AmountMinor != p.AmountMinor || (result.Currency != "" && !strings.EqualFold(result.Currency, p.Currency)) {
			log.Error().
				Str("reference", p.Reference).
				Int64("expected_minor", p.AmountMinor).
				Int64("charged_minor", result.AmountMinor).
				Str("charged_currency", result.Currency).
				Msg("charged amount does not match payment")
			if p.Status == entities.PaymentStatusPending {
				if _, failErr := s.markFailed(ctx, p); failErr != nil {
					return nil, failErr
				}
			}
			return nil, apperrors.NewConflictError(fmt.Sprintf("charged amount does not match payment %s", p.Reference))
		}
		return s.settle(ctx, p, result)
	case providers.ChargeStatusFailed:
		if p.Status == entities.PaymentStatusCancelled {
			return p, nil
		}
		return s.markFailed(ctx, p)
	default:
		return p, nil
	}
}

func (s *PaymentService) settle(ctx context.Context, p *entities.Payment, result *providers.ChargeResult) (*entities.Payment, error) {
	paidAt := time.Now().UTC()
	if result.PaidAt != nil {
		paidAt = result.PaidAt.UTC()
	}
	cancelled := p.Status == entities.PaymentStatusCancelled
	p.Status = entities.PaymentStatusSuccess
	p.GatewayReference = result.GatewayReference
	p.Channel = result.Channel
	p.PaidAt = &paidAt

	quotePaid, err := s.repo.Settle(ctx, p)
	if err != nil {
		if apperrors.IsConflict(err) {
			return s.repo.GetByReference(ctx, p.Reference)
		}
		return nil, err
	}

	if cancelled {
		log.Warn().Str("reference", p.Reference).Msg("charge completed after checkout was cancelled")
	}
	log.Info().Str("reference", p.Reference).Bool("quote_paid", quotePaid).Msg("payment settled")
	observability.RecordPaymentSettled(ctx, s.metrics, p.Currency)

	if quotePaid && p.QuoteID != nil {
		s.publishPaid(ctx, p)
	}
	return p, nil
}

func (s *PaymentService) markFailed(ctx context.Context, p *entities.Payment) (*entities.Payment, error) {
	p.Status = entities.PaymentStatusFailed
	if err := s.repo.UpdateStatus(ctx, p); err != nil {
		if apperrors.IsConflict(err) {
			return s.repo.GetByReference(ctx, p.Reference)
		}
		return nil, err
	}
	log.Warn().Str("reference", p.Reference).Msg("payment failed")
	return p, nil
}

func (s *PaymentService) publishPaid(ctx context.Context, p *entities.Payment) {
	if s.eventBus == nil {
		return
	}
	q, err := s.quoteRepo.GetByID(ctx, *p.QuoteID)
	if err != nil {
		log.Warn().Err(err).Str("quote_id", *p.QuoteID).Msg("failed to load paid quote for notification")
		return
	}
	event := entities.NewQuoteEvent(entities.EventTypeQuotePaid, q)
	event.Data["payment_reference"] = p.Reference
	event.Data["amount"] = fmt.Sprintf("%.2f", p.Amount)
	event.Data["currency"] = p.Currency
	if err := s.eventBus.Publish(ctx, providers.GetEventChannel(event.Type), event); err != nil {
		log.Warn().Err(err).Str("quote_id", q.ID).Msg("failed to publish quote paid event")
	}
}

// Cancel closes a pending payment after the visitor dismissed the widget
func (s *PaymentService) Cancel(ctx context.Context, reference string) (*entities.Payment, error) {
	p, err := s.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	switch p.Status {
	case entities.PaymentStatusCancelled:
		return p, nil
	case entities.PaymentStatusPending:
	default:
		return nil, apperrors.NewConflictError(fmt.Sprintf("payment %s is already %s", p.Reference, p.Status))
	}

	p.Status = entities.PaymentStatusCancelled
	if err := s.repo.UpdateStatus(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		ID        json.Number `json:"id"`
		Reference string      `json:"reference"`
	} `json:"data"`
}

// HandleWebhook processes a signed gateway notification. Each event is acted
// on once; repeated deliveries of a processed event are ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifySignature(body, signature) {
		return apperrors.NewUnauthorizedError("invalid webhook signature")
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperrors.NewValidationError("malformed webhook payload")
	}
	if payload.Event == "" || payload.Data.Reference == "" {
		return apperrors.NewValidationError("webhook payload is missing event or reference")
	}

	eventKey := payload.Data.ID.String()
	if eventKey == "" {
		eventKey = payload.Data.Reference
	}
	eventID := payload.Event + ":" + eventKey

	provider := s.gateway.Name()
	fresh, err := s.webhooks.Record(ctx, provider, eventID, payload.Event, body)
	if err != nil {
		return err
	}
	if !fresh {
		log.Debug().Str("event_id", eventID).Msg("webhook event already processed")
		return nil
	}

	handleErr := s.applyWebhook(ctx, payload)
	if handleErr != nil {
		if err := s.webhooks.MarkFailed(ctx, provider, eventID, handleErr); err != nil {
			log.Error().Err(err).Str("event_id", eventID).Msg("failed to record webhook failure")
		}
		if apperrors.IsNotFound(handleErr) {
			log.Warn().Err(handleErr).Str("event_id", eventID).Msg("webhook references an unknown payment")
			return nil
		}
		return handleErr
	}
	return s.webhooks.MarkProcessed(ctx, provider, eventID)
}

func (s *PaymentService) applyWebhook(ctx context.Context, payload webhookPayload) error {
	if payload.Event != WebhookChargeSuccess {
		log.Debug().Str("event", payload.Event).Msg("ignoring webhook event")
		return nil
	}
	p, err := s.repo.GetByReference(ctx, payload.Data.Reference)
	if err != nil {
		return err
	}
	_, err = s.reconcile(ctx, p)
	return err
}
