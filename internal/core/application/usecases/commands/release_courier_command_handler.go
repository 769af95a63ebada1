package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/ports"
)

// ReleaseCourierCommandHandler returns a courier to the dispatch pool.
// Invoked by the bus consumer on order.cancelled and order.delivered; the
// release is idempotent, so redelivered events cause no double effects.
type ReleaseCourierCommandHandler struct {
	uowFactory CourierUoWFactory
	geoIndex   ports.GeoIndex
}

// NewReleaseCourierCommandHandler creates a handler for courier release.
func NewReleaseCourierCommandHandler(
	uowFactory CourierUoWFactory,
	geoIndex ports.GeoIndex,
) ReleaseCourierCommandHandler {
	return ReleaseCourierCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
	}
}

// Handle releases the courier from the order. A completed release also
// counts the delivery toward the courier's totals.
func (h *ReleaseCourierCommandHandler) Handle(ctx context.Context, cmd ReleaseCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()

	aggregate, err := courierRepo.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if cmd.Completed() {
		err = aggregate.CompleteDelivery(cmd.OrderID(), now)
	} else {
		err = aggregate.Release(cmd.OrderID(), now)
	}
	if err != nil {
		return err
	}

	if err = courierRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = stageCourierEvents(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.geoIndex.Upsert(aggregate.ID(), aggregate.Location(), aggregate.Available(), aggregate.AvailableSince())

	return nil
}
