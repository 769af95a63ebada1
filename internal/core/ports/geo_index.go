package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
)

// GeoIndex is the queryable store of courier positions and availability that
// the assignment engine matches against. It is read-mostly: position and
// availability writes are independent per courier and must not block
// unrelated reads.
//
// The index is a projection, not the source of truth — the courier
// repository is. It is hydrated at process start and kept current by the
// courier heartbeat commands.
type GeoIndex interface {
	// Upsert records a courier's position and availability. Unavailable
	// couriers stay in the index but are excluded from Near results.
	Upsert(courierID kernel.UUID, position kernel.GeoPoint, available bool, availableSince time.Time)

	// Remove drops a courier from the index (deactivation).
	Remove(courierID kernel.UUID)

	// Near returns the available couriers within radiusKm of the point, in
	// no particular order. The context bounds the query: implementations
	// must give up when the deadline passes instead of blocking the
	// coordinator.
	Near(ctx context.Context, point kernel.GeoPoint, radiusKm float64) ([]services.CourierLocation, error)
}
