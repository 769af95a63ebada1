// Package geoindex keeps the dispatch pool in memory: the last known
// position of every on-shift courier, queried with great-circle distance
// during assignment. The database remains the source of truth; the index is
// rebuilt from it at startup and kept in sync by the command handlers.
package geoindex

import (
	"context"
	"sync"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
)

type entry struct {
	position       kernel.GeoPoint
	available      bool
	availableSince time.Time
}

// InMemoryGeoIndex implements ports.GeoIndex with a mutex-guarded map.
// Suitable for a single-process deployment; reads take the shared lock so
// concurrent assignment attempts do not serialize on each other.
type InMemoryGeoIndex struct {
	mu      sync.RWMutex
	entries map[kernel.UUID]entry
}

// NewInMemoryGeoIndex creates an empty geo index.
func NewInMemoryGeoIndex() *InMemoryGeoIndex {
	return &InMemoryGeoIndex{
		entries: make(map[kernel.UUID]entry),
	}
}

// Upsert records a courier's position and availability.
func (idx *InMemoryGeoIndex) Upsert(
	courierID kernel.UUID,
	position kernel.GeoPoint,
	available bool,
	availableSince time.Time,
) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.entries[courierID] = entry{
		position:       position,
		available:      available,
		availableSince: availableSince,
	}
}

// Remove drops a courier from the index.
func (idx *InMemoryGeoIndex) Remove(courierID kernel.UUID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.entries, courierID)
}

// Near returns the available couriers within radiusKm of the point.
// Results are unordered; ranking is the caller's concern.
func (idx *InMemoryGeoIndex) Near(
	ctx context.Context,
	point kernel.GeoPoint,
	radiusKm float64,
) ([]services.CourierLocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := point.Validate(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matches := make([]services.CourierLocation, 0)
	for id, e := range idx.entries {
		if !e.available {
			continue
		}

		distance, err := point.DistanceKmTo(e.position)
		if err != nil {
			return nil, err
		}
		if distance > radiusKm {
			continue
		}

		matches = append(matches, services.CourierLocation{
			CourierID:      id,
			Position:       e.position,
			AvailableSince: e.availableSince,
		})
	}

	return matches, nil
}
