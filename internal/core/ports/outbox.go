package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// OutboxMessage is one workflow event staged for publication. Messages are
// inserted in the same transaction as the state change that produced them
// and published asynchronously by the relay job (at-least-once).
type OutboxMessage struct {
	// ID identifies the outbox row.
	ID kernel.UUID
	// AggregateID is the order (or courier) the event belongs to; combined
	// with Sequence it is the consumer-side idempotency key.
	AggregateID kernel.UUID
	// Sequence is the per-aggregate event sequence number.
	Sequence int64
	// Topic is the bus topic the message is published on.
	Topic string
	// Payload is the JSON-encoded event body.
	Payload []byte
	// Attempts counts failed publish attempts.
	Attempts int
	// CreatedAt is the staging time.
	CreatedAt time.Time
}

// OutboxRepository defines the persistence contract for staged events.
type OutboxRepository interface {
	// Add stages messages for publication within the current transaction.
	Add(ctx context.Context, messages []OutboxMessage) error

	// GetPending retrieves up to limit unpublished messages that have not
	// exhausted their publish attempts, oldest first.
	GetPending(ctx context.Context, limit int) ([]OutboxMessage, error)

	// MarkPublished marks a message as successfully published.
	MarkPublished(ctx context.Context, id kernel.UUID) error

	// MarkFailed increments a message's attempt counter; once attempts
	// exhaust the configured maximum the message is dead-lettered and no
	// longer returned by GetPending.
	MarkFailed(ctx context.Context, id kernel.UUID) error

	// GetDeadLettered retrieves messages that exhausted their attempts, for
	// operational inspection.
	GetDeadLettered(ctx context.Context, limit int) ([]OutboxMessage, error)
}
