// Package queries contains read-only operations for retrieving system state.
// Implements the Query side of the CQRS architecture: handlers read
// projections straight from the database, bypassing the domain model.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery retrieves one order with its line items and workflow history.
//
// Example:
//
//	query, _ := NewGetOrderQuery(orderID)
//	handler := NewGetOrderQueryHandler(db)
//
//	order, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get order: %w", err)
//	}
//	fmt.Printf("Order %s is %s\n", order.ID, order.Status)
type GetOrderQuery struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	forCustomer *kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for one order.
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	query := GetOrderQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	query.orderID = orderID

	return query, nil
}

// NewGetOrderQueryForCustomer creates a customer-scoped query. When the
// order belongs to the given customer the snapshot includes a live
// verification code, so the customer can hand it to the courier at the door.
func NewGetOrderQueryForCustomer(orderID kernel.UUID, customerID kernel.UUID) (GetOrderQuery, error) {
	query, err := NewGetOrderQuery(orderID)
	if err != nil {
		return GetOrderQuery{}, err
	}

	if err = customerID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	query.forCustomer = &customerID

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the requested order id.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// ForCustomer returns the customer the read is scoped to, nil for
// unscoped reads.
func (q GetOrderQuery) ForCustomer() *kernel.UUID {
	return q.forCustomer
}

// OrderItemResponse is one priced line item of an order snapshot.
type OrderItemResponse struct {
	DishID         string `json:"dishId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// OrderHistoryEntryResponse is one recorded workflow transition.
type OrderHistoryEntryResponse struct {
	Status    string    `json:"status"`
	ActorRole string    `json:"actorRole"`
	ActorID   *string   `json:"actorId,omitempty"`
	At        time.Time `json:"at"`
	Note      string    `json:"note,omitempty"`
}

// OrderResponse is the read model of an order. VerificationCode is set only
// on reads scoped to the owning customer; every other caller, the courier
// included, gets nil.
type OrderResponse struct {
	ID               string
	CustomerID       string
	RestaurantID     string
	CourierID        *string
	Status           string
	VerificationCode *string
	Items            []OrderItemResponse
	History          []OrderHistoryEntryResponse
	DeliveryAddress  string
	PickupLatitude   float64
	PickupLongitude  float64
	PaymentMethod    string
	DeliveryFeeCents int64
	TotalPriceCents  int64
	CodeAttempts     int
	CreatedAt        time.Time
	AcceptedAt       *time.Time
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
}
