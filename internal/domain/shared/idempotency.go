package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed payment-processor event IDs so that
// at-least-once webhook deliveries are handled exactly once.
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed with a TTL.
	// Returns true if the event was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Release forgets an event so its redelivery is processed again.
	// Called when handling failed after the mark; without it the retry
	// would short-circuit as a duplicate and the event would be lost.
	Release(ctx context.Context, eventID string) error

	// Close closes the store and releases resources
	Close() error
}

// DefaultEventTTL is how long a processed event ID is remembered. After this
// window the processor has long stopped redelivering the event.
const DefaultEventTTL = 24 * time.Hour
