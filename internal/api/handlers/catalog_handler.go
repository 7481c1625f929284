package handlers

import (
	"net/http"
	"strings"

	"github.com/zatekoja/agencysite/backend/internal/catalog"
)

const suggestionCount = 3

// CatalogHandler serves the public services catalog
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

type serviceNotFound struct {
	Error       string            `json:"error"`
	Fallback    string            `json:"fallback"`
	Suggestions []catalog.Service `json:"suggestions"`
}

// ListServices handles GET /api/services
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	services := catalog.All()
	if category != "" {
		if _, ok := catalog.MatchCategory(category); !ok {
			respondWithError(w, http.StatusBadRequest, "unknown category")
			return
		}
		services = catalog.ByCategory(category)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services":   services,
		"categories": catalog.Categories(),
		"count":      len(services),
	})
}

// LookupService handles GET /api/services/lookup?q=
func (h *CatalogHandler) LookupService(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r.URL.Query().Get("q"))
}

// GetService handles GET /api/services/{id}. The id may be any identifier
// the lookup understands, so old links and route paths still resolve.
func (h *CatalogHandler) GetService(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r.PathValue("id"))
}

func (h *CatalogHandler) resolve(w http.ResponseWriter, identifier string) {
	service, tier, ok := catalog.Lookup(identifier)
	if !ok {
		respondWithJSON(w, http.StatusNotFound, serviceNotFound{
			Error:       "service not found",
			Fallback:    "service-not-found",
			Suggestions: catalog.Suggest(identifier, suggestionCount),
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"service": service,
		"match":   tier,
	})
}
