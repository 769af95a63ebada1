package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrOrderItemsAreRequired      = errors.New("at least one order item is required")
	ErrDeliveryAddressIsEmpty     = errors.New("delivery address is required")
	ErrDeliveryFeeIsNegative      = errors.New("delivery fee must not be negative")
	ErrPaymentMethodIsEmpty       = errors.New("payment method is required")
	ErrOrderItemQuantityIsInvalid = errors.New("item quantity must be greater than 0")
	ErrOrderItemPriceIsNegative   = errors.New("item unit price must not be negative")
	ErrOrderItemNameIsEmpty       = errors.New("item name is required")
)

// OrderItemInput is one catalog line item of a new order, priced by the
// caller from the menu snapshot at submission time.
type OrderItemInput struct {
	DishID         kernel.UUID
	Name           string
	Quantity       int
	UnitPriceCents int64
}

// CreateOrderCommand represents a request to register a new order in the
// workflow. Carries the full line-item snapshot, the restaurant's pickup
// coordinates and the destination address.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, customerID, restaurantID,
//	    pickup, items, "12 Rue de la Paix", "card", 299)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	customerID       kernel.UUID
	restaurantID     kernel.UUID
	pickupPoint      kernel.GeoPoint
	items            []OrderItemInput
	deliveryAddress  string
	paymentMethod    string
	deliveryFeeCents int64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates identifiers, coordinates, items and the destination address.
// Returns an error if any validation fails.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	pickupPoint kernel.GeoPoint,
	items []OrderItemInput,
	deliveryAddress string,
	paymentMethod string,
	deliveryFeeCents int64,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setCustomerID(customerID),
		orderCommand.setRestaurantID(restaurantID),
		orderCommand.setPickupPoint(pickupPoint),
		orderCommand.setItems(items),
		orderCommand.setDeliveryAddress(deliveryAddress),
		orderCommand.setPaymentMethod(paymentMethod),
		orderCommand.setDeliveryFeeCents(deliveryFeeCents),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the identifier of the ordering customer.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// RestaurantID returns the identifier of the preparing restaurant.
func (c CreateOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// PickupPoint returns the restaurant's pickup coordinates.
func (c CreateOrderCommand) PickupPoint() kernel.GeoPoint {
	return c.pickupPoint
}

// Items returns the line-item snapshot.
func (c CreateOrderCommand) Items() []OrderItemInput {
	result := make([]OrderItemInput, len(c.items))
	copy(result, c.items)
	return result
}

// DeliveryAddress returns the destination address.
func (c CreateOrderCommand) DeliveryAddress() string {
	return c.deliveryAddress
}

// PaymentMethod returns the payment method tag.
func (c CreateOrderCommand) PaymentMethod() string {
	return c.paymentMethod
}

// DeliveryFeeCents returns the delivery fee in cents.
func (c CreateOrderCommand) DeliveryFeeCents() int64 {
	return c.deliveryFeeCents
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}

	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *CreateOrderCommand) setPickupPoint(pickupPoint kernel.GeoPoint) error {
	if err := pickupPoint.Validate(); err != nil {
		return err
	}

	c.pickupPoint = pickupPoint
	return nil
}

func (c *CreateOrderCommand) setItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return ErrOrderItemsAreRequired
	}

	for _, item := range items {
		if err := item.DishID.Validate(); err != nil {
			return err
		}
		if item.Name == "" {
			return ErrOrderItemNameIsEmpty
		}
		if item.Quantity <= 0 {
			return ErrOrderItemQuantityIsInvalid
		}
		if item.UnitPriceCents < 0 {
			return ErrOrderItemPriceIsNegative
		}
	}

	c.items = make([]OrderItemInput, len(items))
	copy(c.items, items)
	return nil
}

func (c *CreateOrderCommand) setDeliveryAddress(deliveryAddress string) error {
	if deliveryAddress == "" {
		return ErrDeliveryAddressIsEmpty
	}

	c.deliveryAddress = deliveryAddress
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(paymentMethod string) error {
	if paymentMethod == "" {
		return ErrPaymentMethodIsEmpty
	}

	c.paymentMethod = paymentMethod
	return nil
}

func (c *CreateOrderCommand) setDeliveryFeeCents(deliveryFeeCents int64) error {
	if deliveryFeeCents < 0 {
		return ErrDeliveryFeeIsNegative
	}

	c.deliveryFeeCents = deliveryFeeCents
	return nil
}
