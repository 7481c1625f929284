package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
	"github.com/zatekoja/agencysite/backend/pkg/validation"
)

const (
	contactDedupPrefix = "contact:dedup:"
	contactDedupTTL    = 24 * time.Hour
)

type contactInput struct {
	Name    string `json:"name" validate:"notblank,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"min=10,max=5000"`
}

// ContactService stores contact form messages
type ContactService struct {
	repo     repositories.ContactRepository
	cache    providers.CacheProvider
	eventBus providers.EventBus
}

// NewContactService creates a new contact service. eventBus may be nil.
func NewContactService(repo repositories.ContactRepository, cache providers.CacheProvider, eventBus providers.EventBus) *ContactService {
	return &ContactService{repo: repo, cache: cache, eventBus: eventBus}
}

// Submit validates and stores msg. An identical message from the same email
// within a day is acknowledged without being stored again; duplicate is true
// in that case.
func (s *ContactService) Submit(ctx context.Context, msg *entities.ContactMessage) (duplicate bool, err error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Message = strings.TrimSpace(msg.Message)

	if err := validation.Struct(contactInput{Name: msg.Name, Email: msg.Email, Subject: msg.Subject, Message: msg.Message}); err != nil {
		return false, err
	}

	key := contactDedupPrefix + contactFingerprint(msg)
	n, err := s.cache.Increment(ctx, key, int(contactDedupTTL.Seconds()))
	if err != nil {
		log.Warn().Err(err).Msg("contact dedup unavailable, storing message")
	} else if n > 1 {
		return true, nil
	}

	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, msg); err != nil {
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Msg("failed to clear contact dedup key")
		}
		return false, apperrors.NewInternalError("failed to store contact message", err)
	}

	if s.eventBus != nil {
		event := entities.NewDomainEvent(entities.EventTypeContactReceived, msg.ID, map[string]string{
			"name":    msg.Name,
			"email":   msg.Email,
			"subject": msg.Subject,
			"message": msg.Message,
		})
		if err := s.eventBus.Publish(ctx, providers.GetEventChannel(event.Type), event); err != nil {
			log.Warn().Err(err).Str("contact_id", msg.ID).Msg("failed to publish contact event")
		}
	}
	return false, nil
}

func contactFingerprint(msg *entities.ContactMessage) string {
	sum := sha256.Sum256([]byte(msg.Email + "\x00" + strings.ToLower(msg.Subject) + "\x00" + strings.ToLower(msg.Message)))
	return hex.EncodeToString(sum[:])
}
