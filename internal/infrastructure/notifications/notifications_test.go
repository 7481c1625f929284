package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

func TestNewEmailSender_FallsBackToLogSender(t *testing.T) {
	sender := NewEmailSender(config.NotificationsConfig{})
	_, ok := sender.(*LogSender)
	assert.True(t, ok)
}

func TestNewEmailSender_UsesSendGridWithKey(t *testing.T) {
	sender := NewEmailSender(config.NotificationsConfig{SendGridAPIKey: "SG.test", FromEmail: "hello@codequill.agency"})
	_, ok := sender.(*SendGridSender)
	assert.True(t, ok)
}

func TestNewSendGridSender_RequiresKey(t *testing.T) {
	_, err := NewSendGridSender(config.NotificationsConfig{})
	require.Error(t, err)
}

func TestLogSender_RecordsMessages(t *testing.T) {
	sender := NewLogSender()
	require.NoError(t, sender.Send(context.Background(), providers.EmailMessage{ToEmail: "jane@example.com", Subject: "Quote CQ-123"}))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Quote CQ-123", sent[0].Subject)
}

func TestBuildMail(t *testing.T) {
	m := buildMail("hello@codequill.agency", "CodeQuill", providers.EmailMessage{
		ToEmail:   "jane@example.com",
		ToName:    "Jane",
		Subject:   "Thanks",
		PlainText: "plain",
		HTML:      "<p>html</p>",
	})

	require.NotNil(t, m.From)
	assert.Equal(t, "hello@codequill.agency", m.From.Address)
	assert.Equal(t, "Thanks", m.Subject)
	require.Len(t, m.Personalizations, 1)
	require.Len(t, m.Personalizations[0].To, 1)
	assert.Equal(t, "jane@example.com", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 2)
}
