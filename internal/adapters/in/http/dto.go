// Package http exposes the order workflow over a REST API. Handlers
// translate between wire DTOs and application commands/queries; all business
// rules stay in the domain layer.
package http

import (
	"errors"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	CustomerID       string                   `json:"customerId"`
	RestaurantID     string                   `json:"restaurantId"`
	PickupLatitude   float64                  `json:"pickupLatitude"`
	PickupLongitude  float64                  `json:"pickupLongitude"`
	Items            []CreateOrderItemRequest `json:"items"`
	DeliveryAddress  string                   `json:"deliveryAddress"`
	PaymentMethod    string                   `json:"paymentMethod"`
	DeliveryFeeCents int64                    `json:"deliveryFeeCents"`
}

// CreateOrderItemRequest is one line item of a new order.
type CreateOrderItemRequest struct {
	DishID         string `json:"dishId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// TransitionRequest is the body of POST /api/v1/orders/:id/transition.
type TransitionRequest struct {
	Target           string `json:"target"`
	ActorRole        string `json:"actorRole"`
	ActorID          string `json:"actorId,omitempty"`
	VerificationCode string `json:"verificationCode,omitempty"`
	Note             string `json:"note,omitempty"`
}

// CreateCourierRequest is the body of POST /api/v1/couriers.
type CreateCourierRequest struct {
	Name      string  `json:"name"`
	Vehicle   string  `json:"vehicle"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CourierAvailabilityRequest is the body of PUT /api/v1/couriers/:id/availability.
type CourierAvailabilityRequest struct {
	Available bool    `json:"available"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CourierLocationRequest is the body of PUT /api/v1/couriers/:id/location.
type CourierLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// OrderItemResponse is one line item in order responses.
type OrderItemResponse struct {
	DishID         string `json:"dishId"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	SubtotalCents  int64  `json:"subtotalCents"`
}

// OrderHistoryEntryResponse is one workflow transition in order responses.
type OrderHistoryEntryResponse struct {
	Status    string    `json:"status"`
	ActorRole string    `json:"actorRole"`
	ActorID   *string   `json:"actorId,omitempty"`
	At        time.Time `json:"at"`
	Note      string    `json:"note,omitempty"`
}

// OrderResponse is the wire shape of an order. VerificationCode is present
// only on reads scoped to the owning customer; transition responses and
// unscoped reads never expose it, so the code reaches the courier through
// the customer alone.
type OrderResponse struct {
	ID               string                      `json:"id"`
	CustomerID       string                      `json:"customerId"`
	RestaurantID     string                      `json:"restaurantId"`
	CourierID        *string                     `json:"courierId,omitempty"`
	Status           string                      `json:"status"`
	Items            []OrderItemResponse         `json:"items"`
	History          []OrderHistoryEntryResponse `json:"history,omitempty"`
	DeliveryAddress  string                      `json:"deliveryAddress"`
	PickupLatitude   float64                     `json:"pickupLatitude"`
	PickupLongitude  float64                     `json:"pickupLongitude"`
	PaymentMethod    string                      `json:"paymentMethod"`
	DeliveryFeeCents int64                       `json:"deliveryFeeCents"`
	TotalPriceCents  int64                       `json:"totalPriceCents"`
	VerificationCode *string                     `json:"verificationCode,omitempty"`
	CreatedAt        time.Time                   `json:"createdAt"`
	AcceptedAt       *time.Time                  `json:"acceptedAt,omitempty"`
	PickedUpAt       *time.Time                  `json:"pickedUpAt,omitempty"`
	DeliveredAt      *time.Time                  `json:"deliveredAt,omitempty"`
}

// CourierResponse is the wire shape of a courier.
type CourierResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Vehicle        string    `json:"vehicle"`
	Available      bool      `json:"available"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	CurrentOrderID *string   `json:"currentOrderId,omitempty"`
	AvailableSince time.Time `json:"availableSince"`
	DeliveryCount  int       `json:"deliveryCount"`
	RatingAverage  float64   `json:"ratingAverage"`
	Active         bool      `json:"active"`
}

// AssignmentResponse is the body of POST /api/v1/orders/:id/assignment.
type AssignmentResponse struct {
	Assigned  bool    `json:"assigned"`
	CourierID *string `json:"courierId,omitempty"`
}

// orderFromDomain renders an order aggregate. The verification code is
// never included here: command responses go back to whichever actor issued
// the command, and only the owning customer may see the code.
func orderFromDomain(aggregate *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, OrderItemResponse{
			DishID:         item.DishID().String(),
			Name:           item.Name(),
			Quantity:       item.Quantity(),
			UnitPriceCents: item.UnitPriceCents(),
			SubtotalCents:  item.SubtotalCents(),
		})
	}

	history := make([]OrderHistoryEntryResponse, 0, len(aggregate.History()))
	for _, entry := range aggregate.History() {
		rendered := OrderHistoryEntryResponse{
			Status:    entry.Status.String(),
			ActorRole: entry.ActorRole.String(),
			At:        entry.At,
			Note:      entry.Note,
		}
		if entry.ActorID != nil {
			id := entry.ActorID.String()
			rendered.ActorID = &id
		}
		history = append(history, rendered)
	}

	response := OrderResponse{
		ID:               aggregate.ID().String(),
		CustomerID:       aggregate.CustomerID().String(),
		RestaurantID:     aggregate.RestaurantID().String(),
		Status:           aggregate.Status().String(),
		Items:            items,
		History:          history,
		DeliveryAddress:  aggregate.DeliveryAddress(),
		PickupLatitude:   aggregate.PickupPoint().Latitude(),
		PickupLongitude:  aggregate.PickupPoint().Longitude(),
		PaymentMethod:    aggregate.PaymentMethod(),
		DeliveryFeeCents: aggregate.DeliveryFeeCents(),
		TotalPriceCents:  aggregate.TotalPriceCents(),
		CreatedAt:        aggregate.CreatedAt(),
		AcceptedAt:       aggregate.AcceptedAt(),
		PickedUpAt:       aggregate.PickedUpAt(),
		DeliveredAt:      aggregate.DeliveredAt(),
	}
	if id := aggregate.CourierID(); id != nil {
		value := id.String()
		response.CourierID = &value
	}

	return response
}

// orderFromQuery renders a read-model order.
func orderFromQuery(source queries.OrderResponse) OrderResponse {
	items := make([]OrderItemResponse, 0, len(source.Items))
	for _, item := range source.Items {
		items = append(items, OrderItemResponse{
			DishID:         item.DishID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			SubtotalCents:  item.UnitPriceCents * int64(item.Quantity),
		})
	}

	history := make([]OrderHistoryEntryResponse, 0, len(source.History))
	for _, entry := range source.History {
		history = append(history, OrderHistoryEntryResponse{
			Status:    entry.Status,
			ActorRole: entry.ActorRole,
			ActorID:   entry.ActorID,
			At:        entry.At,
			Note:      entry.Note,
		})
	}

	return OrderResponse{
		ID:               source.ID,
		CustomerID:       source.CustomerID,
		RestaurantID:     source.RestaurantID,
		CourierID:        source.CourierID,
		Status:           source.Status,
		Items:            items,
		History:          history,
		VerificationCode: source.VerificationCode,
		DeliveryAddress:  source.DeliveryAddress,
		PickupLatitude:   source.PickupLatitude,
		PickupLongitude:  source.PickupLongitude,
		PaymentMethod:    source.PaymentMethod,
		DeliveryFeeCents: source.DeliveryFeeCents,
		TotalPriceCents:  source.TotalPriceCents,
		CreatedAt:        source.CreatedAt,
		AcceptedAt:       source.AcceptedAt,
		PickedUpAt:       source.PickedUpAt,
		DeliveredAt:      source.DeliveredAt,
	}
}

// courierFromQuery renders a read-model courier.
func courierFromQuery(source queries.CourierResponse) CourierResponse {
	return CourierResponse{
		ID:             source.ID,
		Name:           source.Name,
		Vehicle:        source.Vehicle,
		Available:      source.Available,
		Latitude:       source.Latitude,
		Longitude:      source.Longitude,
		CurrentOrderID: source.CurrentOrderID,
		AvailableSince: source.AvailableSince,
		DeliveryCount:  source.DeliveryCount,
		RatingAverage:  source.RatingAverage,
		Active:         source.Active,
	}
}

// statusFromError maps domain and application errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, order.ErrVerificationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOrderNotAwaitingAssignment),
		errors.Is(err, order.ErrOrderAlreadyAssigned),
		errors.Is(err, courier.ErrCourierCarryingOrder),
		errors.Is(err, courier.ErrCourierNotAvailable),
		errors.Is(err, courier.ErrCourierInactive),
		errors.Is(err, courier.ErrCourierAlreadyAssigned),
		errors.Is(err, commands.ErrReservationConflict),
		errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
