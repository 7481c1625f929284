package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/agencysite/backend/internal/adapters/cache"
	"github.com/zatekoja/agencysite/backend/internal/api/handlers"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

func newPreferenceHandler() *handlers.PreferenceHandler {
	store := cache.NewPreferenceStore(cache.NewMemoryAdapter())
	return handlers.NewPreferenceHandler(services.NewPreferenceService(store))
}

func decodePrefs(t *testing.T, w *httptest.ResponseRecorder) entities.Preferences {
	t.Helper()
	var prefs entities.Preferences
	require.NoError(t, json.NewDecoder(w.Body).Decode(&prefs))
	return prefs
}

func TestPreferenceHandler_VisitorDefaultsAndToggle(t *testing.T) {
	handler := newPreferenceHandler()

	newReq := func(method, target string) *http.Request {
		req := httptest.NewRequest(method, target, nil)
		req.Header.Set(handlers.VisitorIDHeader, "browser-1")
		return req
	}

	w := httptest.NewRecorder()
	handler.GetPreferences(w, newReq(http.MethodGet, "/api/preferences"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.ThemeLight, decodePrefs(t, w).Theme)

	w = httptest.NewRecorder()
	handler.ToggleTheme(w, newReq(http.MethodPost, "/api/preferences/theme/toggle"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.ThemeDark, decodePrefs(t, w).Theme)

	w = httptest.NewRecorder()
	handler.ToggleTheme(w, newReq(http.MethodPost, "/api/preferences/theme/toggle"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.ThemeLight, decodePrefs(t, w).Theme)
}

func TestPreferenceHandler_SignedInUserIgnoresVisitorHeader(t *testing.T) {
	handler := newPreferenceHandler()

	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(`{"theme":"dark"}`))
	req = withApp(req, entities.AppContext{UserID: "user-1"})
	w := httptest.NewRecorder()
	handler.UpdatePreferences(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/preferences", nil)
	req.Header.Set(handlers.VisitorIDHeader, "browser-2")
	req = withApp(req, entities.AppContext{UserID: "user-1"})
	w = httptest.NewRecorder()
	handler.GetPreferences(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.ThemeDark, decodePrefs(t, w).Theme)
}

func TestPreferenceHandler_Errors(t *testing.T) {
	handler := newPreferenceHandler()

	w := httptest.NewRecorder()
	handler.GetPreferences(w, httptest.NewRequest(http.MethodGet, "/api/preferences", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/preferences", strings.NewReader(`{"theme":"sepia"}`))
	req.Header.Set(handlers.VisitorIDHeader, "browser-3")
	w = httptest.NewRecorder()
	handler.UpdatePreferences(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"theme"`)
}
