package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand represents an actor's request to move an order to
// a target workflow status. The actor identity is resolved by the caller
// (HTTP adapter or bus consumer) before the command is built; authorization
// against the order itself happens in the domain.
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID          kernel.UUID
	target           order.Status
	actor            order.Actor
	verificationCode string
	note             string

	guard guard.ConstructorGuard
}

// NewRequestTransitionCommand creates a transition request.
// The verification code is only meaningful when the target is delivered;
// the note is attached to the order history (typically a cancel reason).
func NewRequestTransitionCommand(
	orderID kernel.UUID,
	target order.Status,
	actor order.Actor,
	verificationCode string,
	note string,
) (RequestTransitionCommand, error) {
	cmd := RequestTransitionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	cmd.actor = actor
	cmd.verificationCode = verificationCode
	cmd.note = note

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

// OrderID returns the order being transitioned.
func (c RequestTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested destination status.
func (c RequestTransitionCommand) Target() order.Status {
	return c.target
}

// Actor returns who is requesting the transition.
func (c RequestTransitionCommand) Actor() order.Actor {
	return c.actor
}

// VerificationCode returns the submitted proof-of-delivery code, if any.
func (c RequestTransitionCommand) VerificationCode() string {
	return c.verificationCode
}

// Note returns the free-text annotation for the history entry.
func (c RequestTransitionCommand) Note() string {
	return c.note
}

func (c *RequestTransitionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RequestTransitionCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}
