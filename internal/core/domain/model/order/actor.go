package order

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Role identifies which party of the fulfillment workflow requests a
// transition. Roles gate the edges of the transition table; identity-level
// checks (the order's own customer, the assigned courier) are layered on top.
type Role int

const (
	// RoleUnknown represents an invalid or undefined role.
	RoleUnknown Role = iota

	// RoleCustomer is the ordering customer.
	RoleCustomer

	// RoleRestaurant is the restaurant preparing the order.
	RoleRestaurant

	// RoleCourier is a delivery courier.
	RoleCourier

	// RoleSystem is the engine itself, used for creation side effects and
	// assignment decisions.
	RoleSystem
)

// getRoleStrings returns a map of Role values to their stable names.
func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:    "unknown",
		RoleCustomer:   "customer",
		RoleRestaurant: "restaurant",
		RoleCourier:    "courier",
		RoleSystem:     "system",
	}
}

// RoleFromString parses a stable role name as used on the wire.
func RoleFromString(s string) (Role, error) {
	for role, name := range getRoleStrings() {
		if role != RoleUnknown && name == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role",
		fmt.Errorf("%q is not a valid role name", s))
}

// Validate checks if the Role value is one of the defined workflow roles.
func (r Role) Validate() error {
	if r != RoleCustomer && r != RoleRestaurant && r != RoleCourier && r != RoleSystem {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// String returns the stable name of the role, implementing fmt.Stringer.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// Actor is the role/identity pair requesting a workflow operation.
// The system actor carries no identity; every other role must carry the UUID
// supplied by the identity service.
type Actor struct {
	role Role
	id   *kernel.UUID
}

// NewActor creates an actor for a customer, restaurant or courier.
// The identity is required; use SystemActor for engine-initiated operations.
func NewActor(role Role, id kernel.UUID) (Actor, error) {
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{role: role, id: &id}, nil
}

// SystemActor returns the engine's own actor, used for creation side effects
// and assignment decisions.
func SystemActor() Actor {
	return Actor{role: RoleSystem}
}

// Role returns the actor's workflow role.
func (a Actor) Role() Role {
	return a.role
}

// ID returns the actor's identity, or nil for the system actor.
func (a Actor) ID() *kernel.UUID {
	return a.id
}

// IsIdentity reports whether the actor carries the given identity.
// The system actor matches no identity.
func (a Actor) IsIdentity(id kernel.UUID) bool {
	return a.id != nil && a.id.IsEqual(id)
}

// String formats the actor as "role" or "role:uuid" for history notes and logs.
func (a Actor) String() string {
	if a.id == nil {
		return a.role.String()
	}
	return fmt.Sprintf("%s:%s", a.role, a.id)
}
