package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// InboxRepository is the consumer-side dedup ledger. The bus delivers
// at-least-once, so every handler skips (consumerGroup, aggregateID,
// sequence) keys it has already seen and records the key once its reaction
// has taken effect. Recording after the reaction keeps a crash in between
// redeliverable; the reactions themselves are idempotent, so the rare
// reprocessing in that window causes no double effects.
type InboxRepository interface {
	// Seen reports whether the idempotency key was already recorded.
	Seen(ctx context.Context, consumerGroup string, aggregateID kernel.UUID, sequence int64) (bool, error)

	// Record stores the idempotency key and reports whether it was already
	// present (true means another delivery of the same event won the race).
	Record(ctx context.Context, consumerGroup string, aggregateID kernel.UUID, sequence int64) (bool, error)
}
