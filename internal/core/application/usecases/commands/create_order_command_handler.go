package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// CreateOrderCommandHandler handles the business logic for order creation.
// Creates the order in pending status, immediately hands it to the restaurant
// by transitioning to waiting_restaurant_validation, and stages the resulting
// events in the outbox within the same transaction.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires an OrderUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command.
// Returns the created order so callers can render the priced snapshot.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(cmd.Items()))
	for _, input := range cmd.Items() {
		item, err := order.NewItem(input.DishID, input.Name, input.Quantity, input.UnitPriceCents)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	now := time.Now().UTC()

	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.RestaurantID(),
		cmd.PickupPoint(),
		items,
		cmd.DeliveryAddress(),
		cmd.PaymentMethod(),
		cmd.DeliveryFeeCents(),
		now,
	)
	if err != nil {
		return nil, err
	}

	// Hand the order to the restaurant right away: pending is only ever
	// observable inside this transaction.
	if err = newOrder.RequestTransition(
		order.WaitingRestaurantValidation, order.SystemActor(), order.TransitionOptions{}, now,
	); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return nil, err
	}

	if err = stageOrderEvents(ctx, uow.OutboxRepository(), newOrder); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return newOrder, nil
}
