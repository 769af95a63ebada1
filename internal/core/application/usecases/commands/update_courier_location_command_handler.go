package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// UpdateCourierLocationCommandHandler persists courier position heartbeats
// and keeps the geo index in sync so the dispatch pool sees fresh positions.
type UpdateCourierLocationCommandHandler struct {
	uowFactory CourierUoWFactory
	geoIndex   ports.GeoIndex
}

// NewUpdateCourierLocationCommandHandler creates a handler for location
// heartbeats.
func NewUpdateCourierLocationCommandHandler(
	uowFactory CourierUoWFactory,
	geoIndex ports.GeoIndex,
) UpdateCourierLocationCommandHandler {
	return UpdateCourierLocationCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
	}
}

// Handle records the courier's new position.
func (h *UpdateCourierLocationCommandHandler) Handle(ctx context.Context, cmd UpdateCourierLocationCommand) error {
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

	if err = aggregate.UpdateLocation(cmd.Location()); err != nil {
		return err
	}

	if err = courierRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.geoIndex.Upsert(aggregate.ID(), aggregate.Location(), aggregate.Available(), aggregate.AvailableSince())

	return nil
}
