package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/ports"
)

// SetCourierAvailabilityCommandHandler moves a courier on or off shift.
// On shift the courier enters the dispatch pool via the geo index; off shift
// it leaves it. A courier carrying an order cannot go off shift.
type SetCourierAvailabilityCommandHandler struct {
	uowFactory CourierUoWFactory
	geoIndex   ports.GeoIndex
}

// NewSetCourierAvailabilityCommandHandler creates a handler for availability
// changes.
func NewSetCourierAvailabilityCommandHandler(
	uowFactory CourierUoWFactory,
	geoIndex ports.GeoIndex,
) SetCourierAvailabilityCommandHandler {
	return SetCourierAvailabilityCommandHandler{
		uowFactory: uowFactory,
		geoIndex:   geoIndex,
	}
}

// Handle applies the availability change and returns the updated courier.
// Domain errors pass through: courier.ErrCourierCarryingOrder when an
// on-delivery courier tries to go off shift, errs.ErrObjectNotFound for an
// unknown courier.
func (h *SetCourierAvailabilityCommandHandler) Handle(
	ctx context.Context,
	cmd SetCourierAvailabilityCommand,
) (*courier.Courier, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()

	aggregate, err := courierRepo.Get(ctx, cmd.CourierID())
	if err != nil {
		return nil, err
	}

	if err = aggregate.SetAvailability(cmd.Available(), cmd.Location(), time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = courierRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = stageCourierEvents(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.geoIndex.Upsert(aggregate.ID(), aggregate.Location(), aggregate.Available(), aggregate.AvailableSince())

	return aggregate, nil
}
