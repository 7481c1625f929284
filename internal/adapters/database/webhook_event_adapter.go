package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
)

// WebhookEventAdapter stores inbound webhook deliveries in webhook_events
type WebhookEventAdapter struct {
	db *sqlx.DB
}

// NewWebhookEventAdapter creates a new webhook event adapter
func NewWebhookEventAdapter(db *sqlx.DB) repositories.WebhookEventRepository {
	return &WebhookEventAdapter{db: db}
}

// Record stores the event and reports whether it still needs processing
func (a *WebhookEventAdapter) Record(ctx context.Context, provider, eventID, eventType string, payload []byte) (bool, error) {
	insert := `
		INSERT INTO webhook_events (id, provider, event_type, payload, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, id) DO NOTHING
	`
	if _, err := a.db.ExecContext(ctx, insert, eventID, provider, eventType, string(payload), false, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("failed to store webhook event: %w", err)
	}

	var processed bool
	lookup := `SELECT processed FROM webhook_events WHERE provider = $1 AND id = $2`
	if err := a.db.GetContext(ctx, &processed, lookup, provider, eventID); err != nil {
		return false, fmt.Errorf("failed to read webhook event: %w", err)
	}
	return !processed, nil
}

// MarkProcessed flags the event as handled
func (a *WebhookEventAdapter) MarkProcessed(ctx context.Context, provider, eventID string) error {
	query := `UPDATE webhook_events SET processed = true, processed_at = $1, error_message = NULL WHERE provider = $2 AND id = $3`
	if _, err := a.db.ExecContext(ctx, query, time.Now().UTC(), provider, eventID); err != nil {
		return fmt.Errorf("failed to mark webhook event processed: %w", err)
	}
	return nil
}

// MarkFailed stores the processing error for the event
func (a *WebhookEventAdapter) MarkFailed(ctx context.Context, provider, eventID string, cause error) error {
	query := `UPDATE webhook_events SET error_message = $1 WHERE provider = $2 AND id = $3`
	if _, err := a.db.ExecContext(ctx, query, cause.Error(), provider, eventID); err != nil {
		return fmt.Errorf("failed to mark webhook event failed: %w", err)
	}
	return nil
}
