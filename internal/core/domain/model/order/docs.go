// Package order provides domain entities and business logic for the order
// fulfillment lifecycle. It implements the Order aggregate root with a
// role-gated status state machine, proof-of-delivery verification and
// workflow event recording.
//
// The package includes:
//   - Order: The aggregate root managing identity, line items, pricing, status history and events
//   - Status: A state machine enforcing the fulfillment transition table
//   - Actor: The role/identity pair requesting a transition
//   - Item: An immutable line-item snapshot taken at order creation
//   - VerificationCode: A single-use proof-of-delivery shared secret
//
// Key business rules:
//   - The total price is computed once at creation and never silently recomputed
//   - Every accepted transition appends a history entry and records a workflow event
//   - Transitions are gated by both the transition table and the actor's role and identity
//   - The delivered transition additionally requires a matching verification code
//   - delivered and cancelled are terminal; cancelling a cancelled order is a no-op
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
