package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Transition errors surfaced to callers of Order.RequestTransition.
var (
	// ErrInvalidTransition is returned when the source/target status pair is
	// not an edge of the transition table. Client error, never retried.
	ErrInvalidTransition = errors.New("status transition is not allowed")
	// ErrUnauthorized is returned when the requesting role or identity is not
	// permitted for an otherwise valid edge.
	ErrUnauthorized = errors.New("actor is not permitted to request this transition")
	// ErrVerificationFailed is returned when a delivered transition is
	// requested with a missing, wrong or already-consumed verification code.
	ErrVerificationFailed = errors.New("verification code mismatch")
)

// Status represents the lifecycle state of a fulfillment order.
// It implements a state machine with role-gated transitions so an order
// always follows the documented customer → restaurant → courier workflow.
//
// State transitions:
//
//	pending ──> waiting_restaurant_validation ──> processing ──> ready_for_pickup ──> on_delivery ──> delivered
//	   │                    │                         │                  │
//	   └────────────────────┴─────────────────────────┴──────────────────┴──> cancelled
//
// delivered and cancelled are terminal. Status values are persisted by their
// stable string names, which double as event topic suffixes.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when a customer places an order.
	Pending

	// WaitingRestaurantValidation means the order was handed to the
	// restaurant and awaits accept/reject.
	WaitingRestaurantValidation

	// Processing means the restaurant accepted the order and the kitchen is
	// preparing it.
	Processing

	// ReadyForPickup means the order is prepared and waiting for a courier.
	// Courier assignment happens in this status without changing it.
	ReadyForPickup

	// OnDelivery means the assigned courier picked the order up.
	OnDelivery

	// Delivered is the terminal success status, reachable only with a
	// matching verification code.
	Delivered

	// Cancelled is the terminal failure status.
	Cancelled
)

// transitionRule is one edge of the transition table: a target status and the
// roles allowed to request it.
type transitionRule struct {
	to    Status
	roles []Role
}

// transitionTable returns the allowed edges per source status.
// Identity-level gating (the assigned courier, the owning customer or
// restaurant) is enforced by the Order aggregate on top of this table.
func transitionTable() map[Status][]transitionRule {
	return map[Status][]transitionRule{
		Pending: {
			{to: WaitingRestaurantValidation, roles: []Role{RoleSystem}},
			{to: Cancelled, roles: []Role{RoleCustomer}},
		},
		WaitingRestaurantValidation: {
			{to: Processing, roles: []Role{RoleRestaurant}},
			{to: Cancelled, roles: []Role{RoleRestaurant, RoleCustomer}},
		},
		Processing: {
			{to: ReadyForPickup, roles: []Role{RoleRestaurant}},
			{to: Cancelled, roles: []Role{RoleRestaurant, RoleCustomer}},
		},
		ReadyForPickup: {
			{to: OnDelivery, roles: []Role{RoleCourier}},
			// Pre-pickup abort. The cancellation event carries the assigned
			// courier so the release consumer can return them to the pool.
			// Customers cannot cancel once the kitchen has finished.
			{to: Cancelled, roles: []Role{RoleRestaurant, RoleSystem}},
		},
		OnDelivery: {
			{to: Delivered, roles: []Role{RoleCourier}},
		},
	}
}

// getStatusStrings returns a map of Status values to their stable names.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:                     "unknown",
		Pending:                     "pending",
		WaitingRestaurantValidation: "waiting_restaurant_validation",
		Processing:                  "processing",
		ReadyForPickup:              "ready_for_pickup",
		OnDelivery:                  "on_delivery",
		Delivered:                   "delivered",
		Cancelled:                   "cancelled",
	}
}

// getValidStatusStrings returns only valid Status values, to support
// validation and transport parsing.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:                     "pending",
		WaitingRestaurantValidation: "waiting_restaurant_validation",
		Processing:                  "processing",
		ReadyForPickup:              "ready_for_pickup",
		OnDelivery:                  "on_delivery",
		Delivered:                   "delivered",
		Cancelled:                   "cancelled",
	}
}

// StatusFromString parses a stable status name as used on the wire.
// Returns a ValueIsInvalidError for unrecognized names.
func StatusFromString(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status name", s))
}

// Validate checks if the Status value is one of the defined workflow states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the stable name of the status, implementing fmt.Stringer.
// Safe to call on any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanTransition checks the transition table for the edge s → to requested by
// the given role.
//
// Returns:
//   - nil if the edge exists and the role is permitted
//   - ErrInvalidTransition (wrapped with the edge) if the pair is not in the table
//   - ErrUnauthorized (wrapped with the role) if the edge exists but the role may not request it
func (s Status) CanTransition(to Status, role Role) error {
	rules, ok := transitionTable()[s]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
	}

	for _, rule := range rules {
		if rule.to != to {
			continue
		}
		for _, allowed := range rule.roles {
			if allowed == role {
				return nil
			}
		}
		return fmt.Errorf("%w: role %s may not request %s -> %s", ErrUnauthorized, role, s, to)
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
}
