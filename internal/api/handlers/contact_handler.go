package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// ContactService defines the contact form operations used by the handler
type ContactService interface {
	Submit(ctx context.Context, msg *entities.ContactMessage) (bool, error)
}

// ContactHandler handles contact form submissions
type ContactHandler struct {
	service  ContactService
	throttle *Throttle
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service ContactService, throttle *Throttle) *ContactHandler {
	return &ContactHandler{service: service, throttle: throttle}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SubmitContact handles POST /api/contact
func (h *ContactHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var payload contactRequest
	if !decodeJSON(w, r, &payload, false) {
		return
	}

	if allowed, retryAfter := h.throttle.Allow(r); !allowed {
		h.throttle.reject(w, retryAfter)
		return
	}

	msg := &entities.ContactMessage{
		Name:      payload.Name,
		Email:     payload.Email,
		Subject:   payload.Subject,
		Message:   payload.Message,
		UserAgent: r.UserAgent(),
	}
	duplicate, err := h.service.Submit(r.Context(), msg)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if duplicate {
		respondWithJSON(w, http.StatusAccepted, map[string]string{
			"status": "duplicate_ignored",
		})
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{
		"status": "received",
		"id":     msg.ID,
	})
}
