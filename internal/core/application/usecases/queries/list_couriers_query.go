package queries

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/guard"
)

var ErrListCouriersQueryIsNotConstructed = errors.New(
	"ListCouriersQuery must be created via NewListCouriersQuery constructor",
)

// ListCouriersQuery retrieves the courier fleet for monitoring dashboards.
// Optionally narrowed to couriers currently available for dispatch.
//
// Example:
//
//	query := NewListCouriersQuery(true)
//	handler := NewListCouriersQueryHandler(db)
//
//	couriers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list couriers: %w", err)
//	}
//	fmt.Printf("%d couriers available\n", len(couriers))
type ListCouriersQuery struct {
	availableOnly bool

	guard guard.ConstructorGuard
}

// NewListCouriersQuery creates a courier list query.
func NewListCouriersQuery(availableOnly bool) ListCouriersQuery {
	return ListCouriersQuery{
		availableOnly: availableOnly,
		guard:         guard.NewConstructorGuard(),
	}
}

// Validate ensures the query was created through the constructor.
func (q ListCouriersQuery) Validate() error {
	return q.guard.Validate(ErrListCouriersQueryIsNotConstructed)
}

// AvailableOnly reports whether the result is narrowed to dispatchable
// couriers.
func (q ListCouriersQuery) AvailableOnly() bool {
	return q.availableOnly
}

// CourierResponse is the read model of one courier.
type CourierResponse struct {
	ID             string
	Name           string
	Vehicle        string
	Available      bool
	Latitude       float64
	Longitude      float64
	CurrentOrderID *string
	AvailableSince time.Time
	DeliveryCount  int
	RatingAverage  float64
	Active         bool
}
