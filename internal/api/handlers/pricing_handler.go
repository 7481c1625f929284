package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/agencysite/backend/internal/catalog"
	"github.com/zatekoja/agencysite/backend/pkg/pricing"
)

// PricingHandler serves the rate card and the budget slider
type PricingHandler struct {
	bounds pricing.Bounds
}

// NewPricingHandler creates a pricing handler using the default slider bounds
func NewPricingHandler() *PricingHandler {
	return &PricingHandler{bounds: pricing.DefaultBounds}
}

// GetPricing handles GET /api/pricing
func (h *PricingHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category != "" {
		label, ok := catalog.MatchCategory(category)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "unknown category")
			return
		}
		category = label
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"plans":   pricing.RateCard(category),
		"budgets": pricing.Budgets(),
		"bounds":  h.bounds,
	})
}

// GetRange handles GET /api/pricing/range?min=&max=
func (h *PricingHandler) GetRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lo, err := intParam(query.Get("min"), h.bounds.Lower)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "min must be an integer")
		return
	}
	hi, err := intParam(query.Get("max"), h.bounds.Upper)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "max must be an integer")
		return
	}

	clamped := pricing.Clamp(pricing.Range{Min: lo, Max: hi}, h.bounds)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"range":  clamped,
		"budget": pricing.BudgetForRange(clamped),
		"bounds": h.bounds,
	})
}

func intParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
