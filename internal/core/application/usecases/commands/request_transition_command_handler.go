package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/order"
)

// RequestTransitionCommandHandler is the workflow coordinator for status
// changes. It loads the order, lets the domain validate the edge, the actor
// and the verification code, then persists the new state and stages the
// resulting events in the outbox, all in one transaction.
//
// Courier release on cancellation and delivery is not done here: it is a
// compensating action driven by the order.cancelled and order.delivered
// events, so it also runs when a transition is requested through the bus.
type RequestTransitionCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewRequestTransitionCommandHandler creates a handler for workflow
// transitions.
func NewRequestTransitionCommandHandler(uowFactory OrderUoWFactory) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes one transition request and returns the updated order.
// Domain errors pass through unwrapped so callers can map them:
// order.ErrInvalidTransition, order.ErrUnauthorized,
// order.ErrVerificationFailed, errs.ErrObjectNotFound.
func (h *RequestTransitionCommandHandler) Handle(
	ctx context.Context,
	cmd RequestTransitionCommand,
) (*order.Order, error) {
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

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	opts := order.TransitionOptions{
		VerificationCode: cmd.VerificationCode(),
		Note:             cmd.Note(),
	}
	if err = aggregate.RequestTransition(cmd.Target(), cmd.Actor(), opts, time.Now().UTC()); err != nil {
		if errors.Is(err, order.ErrVerificationFailed) {
			// The failed attempt counter still has to survive.
			if updateErr := orderRepo.Update(ctx, aggregate); updateErr == nil {
				_ = uow.Commit(ctx)
			}
		}
		return nil, err
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = stageOrderEvents(ctx, uow.OutboxRepository(), aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}
