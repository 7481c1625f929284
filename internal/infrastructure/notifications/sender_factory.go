package notifications

import (
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

// NewEmailSender returns the SendGrid sender when a key is configured and
// the log sender otherwise.
func NewEmailSender(cfg config.NotificationsConfig) providers.EmailSender {
	if cfg.SendGridAPIKey == "" {
		log.Warn().Msg("SENDGRID_API_KEY not set, notification emails will only be logged")
		return NewLogSender()
	}

	sender, err := NewSendGridSender(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to create SendGrid sender, falling back to log sender")
		return NewLogSender()
	}
	return sender
}
