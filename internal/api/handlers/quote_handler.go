package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
)

// QuoteService defines the quote operations used by the handler
type QuoteService interface {
	Create(ctx context.Context, q *entities.QuoteRequest) error
	ListByUser(ctx context.Context, userID string) ([]*entities.QuoteRequest, error)
	List(ctx context.Context, filter repositories.QuoteFilter) ([]*entities.QuoteRequest, error)
	Get(ctx context.Context, id string) (*entities.QuoteRequest, error)
	GetByReference(ctx context.Context, reference string) (*entities.QuoteRequest, error)
	Update(ctx context.Context, id string, patch entities.QuotePatch) (*entities.QuoteRequest, error)
	UpdateStatus(ctx context.Context, id string, status entities.QuoteStatus) (*entities.QuoteRequest, error)
}

// QuoteHandler handles submitted quote requests
type QuoteHandler struct {
	service  QuoteService
	throttle *Throttle
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(service QuoteService, throttle *Throttle) *QuoteHandler {
	return &QuoteHandler{service: service, throttle: throttle}
}

type quoteRequest struct {
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone"`
	Company            string         `json:"company"`
	ServiceCategory    string         `json:"service_category"`
	ServiceType        string         `json:"service_type"`
	Budget             string         `json:"budget"`
	BudgetCustom       bool           `json:"budget_custom"`
	Timeline           string         `json:"timeline"`
	ProjectDescription string         `json:"project_description"`
	Goals              string         `json:"goals"`
	TargetAudience     string         `json:"target_audience"`
	Features           []string       `json:"features"`
	Ratings            map[string]int `json:"ratings"`
	Terms              bool           `json:"terms"`
}

func (p quoteRequest) toEntity() *entities.QuoteRequest {
	return &entities.QuoteRequest{
		Name:               p.Name,
		Email:              p.Email,
		Phone:              p.Phone,
		Company:            p.Company,
		ServiceCategory:    p.ServiceCategory,
		ServiceType:        p.ServiceType,
		Budget:             p.Budget,
		BudgetCustom:       p.BudgetCustom,
		Timeline:           p.Timeline,
		ProjectDescription: p.ProjectDescription,
		Goals:              p.Goals,
		TargetAudience:     p.TargetAudience,
		Features:           p.Features,
		Ratings:            p.Ratings,
		Terms:              p.Terms,
	}
}

type statusRequest struct {
	Status entities.QuoteStatus `json:"status"`
}

// SubmitQuote handles POST /api/quotes
func (h *QuoteHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	var payload quoteRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	if allowed, retryAfter := h.throttle.Allow(r); !allowed {
		h.throttle.reject(w, retryAfter)
		return
	}

	quote := payload.toEntity()
	if err := h.service.Create(r.Context(), quote); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, quote)
}

// ListQuotes handles GET /api/quotes. Administrators see every quote and may
// filter by status; clients see their own.
func (h *QuoteHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	app := entities.AppContextFrom(r.Context())

	var (
		quotes []*entities.QuoteRequest
		err    error
	)
	if app.IsAdmin {
		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))
		quotes, err = h.service.List(r.Context(), repositories.QuoteFilter{
			Status: entities.QuoteStatus(query.Get("status")),
			Limit:  limit,
			Offset: offset,
		})
	} else {
		quotes, err = h.service.ListByUser(r.Context(), app.UserID)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	})
}

// GetQuote handles GET /api/quotes/{id}
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}

// GetQuoteByReference handles GET /api/admin/quotes/reference/{reference}
func (h *QuoteHandler) GetQuoteByReference(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.GetByReference(r.Context(), r.PathValue("reference"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}

// UpdateQuote handles PATCH /api/quotes/{id}
func (h *QuoteHandler) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	var patch entities.QuotePatch
	if !decodeJSON(w, r, &patch, false) {
		return
	}

	quote, err := h.service.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}

// UpdateQuoteStatus handles PATCH /api/admin/quotes/{id}/status
func (h *QuoteHandler) UpdateQuoteStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	quote, err := h.service.UpdateStatus(r.Context(), r.PathValue("id"), payload.Status)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}
