package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// VisitorIDHeader identifies a signed-out browser
const VisitorIDHeader = "X-Visitor-ID"

// PreferenceService defines the preference operations used by the handler
type PreferenceService interface {
	Get(ctx context.Context, visitorKey string) (*entities.Preferences, error)
	SetTheme(ctx context.Context, visitorKey string, theme entities.Theme) (*entities.Preferences, error)
	ToggleTheme(ctx context.Context, visitorKey string) (*entities.Preferences, error)
}

// PreferenceHandler handles display preferences
type PreferenceHandler struct {
	service PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(service PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{service: service}
}

type themeRequest struct {
	Theme entities.Theme `json:"theme"`
}

// visitorKey is the signed-in user id, else the visitor header
func visitorKey(r *http.Request) string {
	if app := entities.AppContextFrom(r.Context()); app.Authenticated() {
		return "user:" + app.UserID
	}
	if id := strings.TrimSpace(r.Header.Get(VisitorIDHeader)); id != "" {
		return "visitor:" + id
	}
	return ""
}

// GetPreferences handles GET /api/preferences
func (h *PreferenceHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.Get(r.Context(), visitorKey(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /api/preferences
func (h *PreferenceHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var payload themeRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	prefs, err := h.service.SetTheme(r.Context(), visitorKey(r), payload.Theme)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

// ToggleTheme handles POST /api/preferences/theme/toggle
func (h *PreferenceHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.ToggleTheme(r.Context(), visitorKey(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}
