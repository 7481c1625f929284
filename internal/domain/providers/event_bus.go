package providers

import (
	"context"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.DomainEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelPrefix namespaces every channel of this service
const EventChannelPrefix = "agency:"

// GetEventChannel returns the channel an event type is published on
func GetEventChannel(eventType entities.EventType) string {
	return EventChannelPrefix + string(eventType)
}
