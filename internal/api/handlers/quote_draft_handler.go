package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// QuoteWizard defines the draft operations used by the handler
type QuoteWizard interface {
	Start(ctx context.Context, prefill services.WizardPrefill) (*entities.QuoteDraft, error)
	Get(ctx context.Context, id string) (*entities.QuoteDraft, error)
	Update(ctx context.Context, id string, step entities.WizardStep, fields entities.DraftFields) (*entities.QuoteDraft, error)
	Next(ctx context.Context, id string) (*entities.QuoteDraft, error)
	Back(ctx context.Context, id string) (*entities.QuoteDraft, error)
	Submit(ctx context.Context, id string) (*entities.QuoteDraft, bool, error)
}

// QuoteDraftHandler drives the multi-step quote wizard
type QuoteDraftHandler struct {
	wizard   QuoteWizard
	throttle *Throttle
}

// NewQuoteDraftHandler creates a new quote draft handler
func NewQuoteDraftHandler(wizard QuoteWizard, throttle *Throttle) *QuoteDraftHandler {
	return &QuoteDraftHandler{wizard: wizard, throttle: throttle}
}

type draftUpdateRequest struct {
	Step   entities.WizardStep  `json:"step"`
	Fields entities.DraftFields `json:"fields"`
}

// StartDraft handles POST /api/quote-drafts?service=&type=&price=
func (h *QuoteDraftHandler) StartDraft(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	draft, err := h.wizard.Start(r.Context(), services.WizardPrefill{
		Service: query.Get("service"),
		Type:    query.Get("type"),
		Price:   query.Get("price"),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, draft)
}

// GetDraft handles GET /api/quote-drafts/{id}
func (h *QuoteDraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.wizard.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, draft)
}

// UpdateDraft handles PATCH /api/quote-drafts/{id}
func (h *QuoteDraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var payload draftUpdateRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	draft, err := h.wizard.Update(r.Context(), r.PathValue("id"), payload.Step, payload.Fields)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, draft)
}

// NextStep handles POST /api/quote-drafts/{id}/next
func (h *QuoteDraftHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	draft, err := h.wizard.Next(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, draft)
}

// PreviousStep handles POST /api/quote-drafts/{id}/back
func (h *QuoteDraftHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	draft, err := h.wizard.Back(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, draft)
}

// SubmitDraft handles POST /api/quote-drafts/{id}/submit. A draft that was
// already submitted answers 200 with the existing quote reference.
func (h *QuoteDraftHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	if allowed, retryAfter := h.throttle.Allow(r); !allowed {
		h.throttle.reject(w, retryAfter)
		return
	}

	draft, created, err := h.wizard.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondWithJSON(w, status, map[string]interface{}{
		"draft":     draft,
		"quote_id":  draft.QuoteID,
		"reference": draft.QuoteReference,
		"created":   created,
	})
}
