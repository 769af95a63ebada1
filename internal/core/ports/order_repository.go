package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Update uses optimistic concurrency: it commits only if the stored version
// still matches the aggregate's loaded version, and returns an
// errs.VersionIsInvalidError otherwise. This serializes transitions per
// order without any global lock.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate, guarded by the
	// aggregate's version.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllAwaitingAssignment retrieves orders in ready_for_pickup with no
	// courier assigned. Used by the assignment retry job.
	GetAllAwaitingAssignment(ctx context.Context) ([]*order.Order, error)
}
