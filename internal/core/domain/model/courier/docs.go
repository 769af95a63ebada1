// Package courier provides the Courier aggregate for the fulfillment engine.
//
// A courier is the delivery-side party of the workflow: it heartbeats its
// position and availability into the geo index, gets reserved by the
// assignment engine, and is released when its order terminalizes.
//
// Key business rules:
//   - A courier holds at most one active order at a time
//   - The availability flag is false whenever a current order is set
//   - Reservation is a compare-and-set: it fails if the courier is no longer
//     free, so two coordinators can never double-book the same courier
//   - Release is idempotent so redelivered cancellation events cannot
//     double-apply
//   - Couriers are never deleted, only deactivated
package courier
