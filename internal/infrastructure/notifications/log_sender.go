package notifications

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
)

// LogSender writes emails to the log instead of delivering them. It is used
// when no SendGrid key is configured and keeps the last messages for tests.
type LogSender struct {
	mu   sync.Mutex
	sent []providers.EmailMessage
}

var _ providers.EmailSender = (*LogSender)(nil)

// NewLogSender creates a new log-only sender
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the message
func (s *LogSender) Send(ctx context.Context, msg providers.EmailMessage) error {
	log.Info().
		Str("to", msg.ToEmail).
		Str("subject", msg.Subject).
		Msg("email delivery disabled, message logged")

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the messages logged so far
func (s *LogSender) Sent() []providers.EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]providers.EmailMessage(nil), s.sent...)
}
