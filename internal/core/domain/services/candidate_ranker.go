package services

import (
	"math"
	"sort"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// DistanceToleranceKm is the measurement tolerance of the ranking: couriers
// whose distances differ by no more than this are considered equally close,
// and the one waiting longest wins. Balances proximity against starvation
// avoidance.
const DistanceToleranceKm = 0.05

// CourierLocation is one available courier as seen by the geo index: its
// identity, last reported position and the start of its current availability
// stretch.
type CourierLocation struct {
	CourierID      kernel.UUID
	Position       kernel.GeoPoint
	AvailableSince time.Time
}

// AssignmentCandidate is a ranked match for an order: a courier reference
// with its great-circle distance to the pickup point. Derived per matching
// request, never persisted.
type AssignmentCandidate struct {
	CourierID      kernel.UUID
	DistanceKm     float64
	AvailableSince time.Time
}

// CandidateRanker ranks available couriers for an order's pickup point.
//
// Ordering: distance ascending, then availableSince ascending within the
// distance tolerance, so among equally close couriers the one idle longest is
// offered the order first.
type CandidateRanker struct{}

// NewCandidateRanker creates a CandidateRanker.
func NewCandidateRanker() CandidateRanker {
	return CandidateRanker{}
}

// Rank filters couriers to those within radiusKm of the pickup point and
// orders them by (distance asc, availableSince asc). Returns an empty slice
// when no courier is in range; the caller decides whether to widen the
// radius.
//
// Parameters:
//   - pickup: the restaurant's pickup coordinates (must be valid)
//   - couriers: available couriers with their last reported positions
//   - radiusKm: search radius in kilometers (must be positive)
func (CandidateRanker) Rank(
	pickup kernel.GeoPoint,
	couriers []CourierLocation,
	radiusKm float64,
) ([]AssignmentCandidate, error) {
	if err := pickup.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]AssignmentCandidate, 0, len(couriers))
	for _, c := range couriers {
		distance, err := pickup.DistanceKmTo(c.Position)
		if err != nil {
			return nil, err
		}
		if distance > radiusKm {
			continue
		}

		candidates = append(candidates, AssignmentCandidate{
			CourierID:      c.CourierID,
			DistanceKm:     distance,
			AvailableSince: c.AvailableSince,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if math.Abs(a.DistanceKm-b.DistanceKm) > DistanceToleranceKm {
			return a.DistanceKm < b.DistanceKm
		}
		if !a.AvailableSince.Equal(b.AvailableSince) {
			return a.AvailableSince.Before(b.AvailableSince)
		}
		// deterministic order for identical distance and waiting time
		return a.CourierID.String() < b.CourierID.String()
	})

	return candidates, nil
}
