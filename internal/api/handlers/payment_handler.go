package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// PaystackSignatureHeader carries the HMAC of a webhook body
const PaystackSignatureHeader = "X-Paystack-Signature"

// PaymentService defines the payment operations used by the handler
type PaymentService interface {
	Checkout(ctx context.Context, req services.CheckoutRequest) (*entities.Checkout, error)
	Verify(ctx context.Context, reference string) (*entities.Payment, error)
	Cancel(ctx context.Context, reference string) (*entities.Payment, error)
	Get(ctx context.Context, reference string) (*entities.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Payment, error)
	HandleWebhook(ctx context.Context, body []byte, signature string) error
}

// PaymentHandler handles checkout and gateway callbacks
type PaymentHandler struct {
	service PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// Checkout handles POST /api/payments/checkout
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var payload services.CheckoutRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	checkout, err := h.service.Checkout(r.Context(), payload)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, checkout)
}

// VerifyPayment handles POST /api/payments/{reference}/verify, called by the
// widget's success callback
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.Verify(r.Context(), r.PathValue("reference"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payment)
}

// CancelPayment handles POST /api/payments/{reference}/cancel, called when the
// widget is closed without paying
func (h *PaymentHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.Cancel(r.Context(), r.PathValue("reference"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payment)
}

// GetPayment handles GET /api/payments/{reference}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.Get(r.Context(), r.PathValue("reference"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payment)
}

// ListPayments handles GET /api/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	app := entities.AppContextFrom(r.Context())
	payments, err := h.service.ListByUser(r.Context(), app.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"count":    len(payments),
	})
}

// HandleWebhook handles POST /webhooks/payments. The signature covers the
// raw body, so it is read before any decoding.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), body, r.Header.Get(PaystackSignatureHeader)); err != nil {
		log.Warn().Err(err).Msg("payment webhook rejected")
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
