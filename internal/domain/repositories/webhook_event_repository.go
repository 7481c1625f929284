package repositories

import "context"

// WebhookEventRepository records inbound webhook deliveries so each event
// is acted on once.
type WebhookEventRepository interface {
	// Record stores the event. It returns false when the event was already
	// processed by an earlier delivery.
	Record(ctx context.Context, provider, eventID, eventType string, payload []byte) (bool, error)

	// MarkProcessed flags the event as handled
	MarkProcessed(ctx context.Context, provider, eventID string) error

	// MarkFailed stores the processing error for the event
	MarkFailed(ctx context.Context, provider, eventID string, cause error) error
}
