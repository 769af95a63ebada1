package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrReleaseCourierCommandIsNotConstructed = errors.New(
	"ReleaseCourierCommand must be created via NewReleaseCourierCommand constructor",
)

// ReleaseCourierCommand represents the compensating action that returns a
// courier to the dispatch pool after its order was cancelled or delivered.
// Driven by the order.cancelled and order.delivered bus events; safe to
// replay since releasing an order the courier is not holding is a no-op.
type ReleaseCourierCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	orderID   kernel.UUID
	completed bool

	guard guard.ConstructorGuard
}

// NewReleaseCourierCommand creates a release command. completed marks the
// release as a finished delivery, which counts toward the courier's totals.
func NewReleaseCourierCommand(
	courierID kernel.UUID,
	orderID kernel.UUID,
	completed bool,
) (ReleaseCourierCommand, error) {
	cmd := ReleaseCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setOrderID(orderID),
	); err != nil {
		return ReleaseCourierCommand{}, err
	}

	cmd.completed = completed

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReleaseCourierCommand) Validate() error {
	return c.guard.Validate(ErrReleaseCourierCommandIsNotConstructed)
}

// CourierID returns the courier being released.
func (c ReleaseCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

// OrderID returns the order the courier is released from.
func (c ReleaseCourierCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Completed reports whether the release follows a finished delivery.
func (c ReleaseCourierCommand) Completed() bool {
	return c.completed
}

func (c *ReleaseCourierCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	c.courierID = courierID
	return nil
}

func (c *ReleaseCourierCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
