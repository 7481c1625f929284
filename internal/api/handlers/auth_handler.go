package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/agencysite/backend/internal/api/middleware"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// AuthService defines the identity operations used by the handler
type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*services.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*services.AuthResult, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context) (*entities.User, error)
}

// AuthHandler handles sign-up, sign-in and sessions
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload credentialsRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	result, err := h.service.SignUp(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload credentialsRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	result, err := h.service.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context(), middleware.BearerToken(r)); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}
