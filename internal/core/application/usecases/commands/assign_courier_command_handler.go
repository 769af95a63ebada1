package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrNoCourierAvailable is returned when no courier could be reserved
	// within the maximum search radius. The order stays ready for pickup and
	// the retry job picks it up again.
	ErrNoCourierAvailable = errors.New("no courier available")

	// ErrReservationConflict is returned when the order itself was modified
	// concurrently while a courier was being reserved. The whole assignment
	// attempt can be retried.
	ErrReservationConflict = errors.New("courier reservation conflict")
)

// AssignCourierCommandHandler dispatches couriers to orders that are ready
// for pickup. Candidates come from the in-memory geo index, are ranked by
// great-circle distance to the pickup point (idle-time and courier id break
// ties), and are reserved one at a time: a courier whose row changed under us
// is skipped and the next candidate is tried. The search radius doubles up to
// a configured cap when a ring yields nothing.
//
// Example:
//
//	handler := NewAssignCourierCommandHandler(uowFactory, geoIndex, 3, 24)
//	cmd, _ := NewAssignCourierCommand(orderID)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrNoCourierAvailable):
//	    log.Println("Nobody nearby, retrying later")
//	case err != nil:
//	    log.Printf("Assignment failed: %v", err)
//	default:
//	    log.Println("Courier assigned")
//	}
type AssignCourierCommandHandler struct {
	uowFactory   UoWFactory
	geoIndex     ports.GeoIndex
	ranker       services.CandidateRanker
	baseRadiusKm float64
	maxRadiusKm  float64
}

// NewAssignCourierCommandHandler creates a handler for courier dispatch.
// baseRadiusKm is the first search ring, maxRadiusKm caps the widening.
func NewAssignCourierCommandHandler(
	uowFactory UoWFactory,
	geoIndex ports.GeoIndex,
	baseRadiusKm float64,
	maxRadiusKm float64,
) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory:   uowFactory,
		geoIndex:     geoIndex,
		ranker:       services.NewCandidateRanker(),
		baseRadiusKm: baseRadiusKm,
		maxRadiusKm:  maxRadiusKm,
	}
}

// Handle processes one assignment attempt for the order.
// Returns ErrNoCourierAvailable when every candidate in every ring was taken
// or none existed, and order.ErrOrderNotAwaitingAssignment when the order is
// not (or no longer) ready for dispatch.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, command AssignCourierCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return err
	}
	if !aggregate.EligibleForAssignment() {
		return order.ErrOrderNotAwaitingAssignment
	}

	now := time.Now().UTC()
	tried := make(map[string]bool)

	radius := h.baseRadiusKm
	for {
		locations, err := h.geoIndex.Near(ctx, aggregate.PickupPoint(), radius)
		if err != nil {
			return err
		}

		candidates, err := h.ranker.Rank(aggregate.PickupPoint(), locations, radius)
		if err != nil {
			return err
		}

		for _, candidate := range candidates {
			if tried[candidate.CourierID.String()] {
				continue
			}
			tried[candidate.CourierID.String()] = true

			reserved, err := h.tryReserve(ctx, uow, aggregate, candidate.CourierID, now)
			if err != nil {
				return err
			}
			if reserved != nil {
				if err = uow.Commit(ctx); err != nil {
					return err
				}
				h.geoIndex.Upsert(reserved.ID(), reserved.Location(), false, reserved.AvailableSince())
				return nil
			}
		}

		if radius >= h.maxRadiusKm {
			return ErrNoCourierAvailable
		}
		radius = min(radius*2, h.maxRadiusKm)
	}
}

// tryReserve attempts to reserve one candidate and bind it to the order.
// A nil courier with a nil error means the candidate was lost to a concurrent
// writer (or is no longer reservable) and the next one should be tried.
func (h AssignCourierCommandHandler) tryReserve(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
	courierID kernel.UUID,
	now time.Time,
) (*courier.Courier, error) {
	candidate, err := uow.CourierRepository().Get(ctx, courierID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err = candidate.Reserve(aggregate.ID(), now); err != nil {
		// Busy, inactive or already carrying an order: skip this candidate.
		return nil, nil
	}

	if err = uow.CourierRepository().Update(ctx, candidate); err != nil {
		if errors.Is(err, errs.ErrVersionIsInvalid) {
			// Lost the row to a concurrent reservation.
			return nil, nil
		}
		return nil, err
	}

	if err = aggregate.Assign(candidate.ID(), now); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		if errors.Is(err, errs.ErrVersionIsInvalid) {
			return nil, fmt.Errorf("%w: order %s changed during reservation", ErrReservationConflict, aggregate.ID())
		}
		return nil, err
	}

	if err = stageOrderEvents(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return nil, err
	}
	if err = stageCourierEvents(ctx, uow.OutboxRepository(), candidate); err != nil {
		return nil, err
	}

	return candidate, nil
}
