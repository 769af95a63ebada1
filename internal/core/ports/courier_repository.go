// Package ports defines the contracts between the core of the fulfillment
// engine and its adapters: repositories, the unit of work, the geo index and
// the event bus. These interfaces enable dependency inversion and
// testability.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
//
// Update uses optimistic concurrency the same way OrderRepository does; a
// version conflict on a courier is how a losing coordinator learns its
// reservation raced, so callers treat errs.VersionIsInvalidError as a
// reservation conflict and move to the next candidate.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Update persists changes to an existing courier aggregate, guarded by
	// the aggregate's version.
	Update(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllAvailable retrieves all active, available couriers. Used to
	// hydrate the geo index at process start.
	GetAllAvailable(ctx context.Context) ([]*courier.Courier, error)
}
