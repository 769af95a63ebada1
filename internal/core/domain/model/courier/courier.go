package courier

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when creating a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly
	// initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier constructor")
	// ErrCourierAlreadyAssigned is returned when a reservation loses the
	// compare-and-set: the courier is no longer free.
	ErrCourierAlreadyAssigned = errors.New("courier is already assigned to an order")
	// ErrCourierNotAvailable is returned when reserving a courier that has
	// not declared itself available.
	ErrCourierNotAvailable = errors.New("courier is not available")
	// ErrCourierInactive is returned when operating on a deactivated courier.
	ErrCourierInactive = errors.New("courier is deactivated")
	// ErrCourierCarryingOrder is returned when flipping availability or
	// deactivating while an order is still held.
	ErrCourierCarryingOrder = errors.New("courier is carrying an active order")
)

// StatusEvent is a courier availability change recorded on the aggregate and
// drained into the outbox, published as courier.status_changed. Sequence is
// per-courier, giving consumers the (courier id, sequence) idempotency key.
type StatusEvent struct {
	CourierID  kernel.UUID
	Sequence   int64
	Available  bool
	OrderID    *kernel.UUID
	OccurredAt time.Time
}

// Courier is the aggregate root for the delivery-side party of the workflow.
//
// Invariants:
//   - available is false whenever currentOrderID is non-nil
//   - at most one active order at a time (currentOrderID)
//   - availableSince tracks the start of the current availability stretch
//     and orders candidates fairly in the assignment engine
//   - never deleted, only deactivated
type Courier struct {
	// id is the 1:1 user reference of the courier
	id      kernel.UUID
	name    string
	vehicle Vehicle

	available      bool
	location       kernel.GeoPoint
	currentOrderID *kernel.UUID
	availableSince time.Time

	deliveryCount int
	ratingSum     float64
	ratingCount   int

	active bool

	// sequence is the per-courier status event counter; the last used value
	sequence int64
	// version supports optimistic concurrency in the repository
	version int64

	pendingEvents []StatusEvent

	guard guard.ConstructorGuard
}

// NewCourier creates a courier at onboarding time. The courier starts active
// but unavailable: availability is declared by the courier's own heartbeats.
//
// Parameters:
//   - id: the courier's user reference (1:1, must be a valid UUID)
//   - name: human-readable name (must be non-empty)
//   - vehicle: vehicle type
//   - location: initial position
func NewCourier(id kernel.UUID, name string, vehicle Vehicle, location kernel.GeoPoint) (*Courier, error) {
	c := &Courier{
		active: true,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setVehicle(vehicle),
		c.setLocation(location),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage,
// preserving availability, assignment, statistics, sequence and version.
func RestoreCourier(
	id kernel.UUID,
	name string,
	vehicle Vehicle,
	location kernel.GeoPoint,
	available bool,
	currentOrderID *kernel.UUID,
	availableSince time.Time,
	deliveryCount int,
	ratingSum float64,
	ratingCount int,
	active bool,
	sequence int64,
	version int64,
) (*Courier, error) {
	c := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setName(name),
		c.setVehicle(vehicle),
		c.setLocation(location),
	); err != nil {
		return nil, err
	}

	if currentOrderID != nil {
		if err := currentOrderID.Validate(); err != nil {
			return nil, err
		}
		if available {
			return nil, errs.NewValueIsInvalidErrorWithCause("availability",
				errors.New("courier with a current order cannot be available"))
		}
		c.currentOrderID = currentOrderID
	}

	c.available = available
	c.availableSince = availableSince
	c.deliveryCount = deliveryCount
	c.ratingSum = ratingSum
	c.ratingCount = ratingCount
	c.active = active
	c.sequence = sequence
	c.version = version

	return c, nil
}

// Validate ensures the Courier instance was properly constructed.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's user reference.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's human-readable name.
func (c *Courier) Name() string {
	return c.name
}

// Vehicle returns the courier's vehicle type.
func (c *Courier) Vehicle() Vehicle {
	return c.vehicle
}

// Available reports whether the courier may be reserved for an order.
func (c *Courier) Available() bool {
	return c.available
}

// Location returns the courier's last reported position.
func (c *Courier) Location() kernel.GeoPoint {
	return c.location
}

// CurrentOrderID returns the held order, nil when the courier is free.
func (c *Courier) CurrentOrderID() *kernel.UUID {
	return c.currentOrderID
}

// AvailableSince returns the start of the current availability stretch.
// Zero when the courier has never declared availability.
func (c *Courier) AvailableSince() time.Time {
	return c.availableSince
}

// DeliveryCount returns the cumulative number of completed deliveries.
func (c *Courier) DeliveryCount() int {
	return c.deliveryCount
}

// RatingAverage returns the running rating average, 0 with no ratings yet.
func (c *Courier) RatingAverage() float64 {
	if c.ratingCount == 0 {
		return 0
	}
	return c.ratingSum / float64(c.ratingCount)
}

// RatingSum returns the accumulated rating total for persistence.
func (c *Courier) RatingSum() float64 {
	return c.ratingSum
}

// RatingCount returns the number of ratings received, for persistence.
func (c *Courier) RatingCount() int {
	return c.ratingCount
}

// Active reports whether the courier is onboarded and not deactivated.
func (c *Courier) Active() bool {
	return c.active
}

// Sequence returns the last used per-courier status event sequence number.
func (c *Courier) Sequence() int64 {
	return c.sequence
}

// Version returns the optimistic-concurrency version loaded from storage.
func (c *Courier) Version() int64 {
	return c.version
}

// PendingEvents returns status events recorded since the aggregate was
// loaded, for the outbox.
func (c *Courier) PendingEvents() []StatusEvent {
	events := make([]StatusEvent, len(c.pendingEvents))
	copy(events, c.pendingEvents)
	return events
}

// ClearPendingEvents discards recorded events after they were handed to the
// outbox.
func (c *Courier) ClearPendingEvents() {
	c.pendingEvents = nil
}

// SetAvailability flips the courier's availability from a heartbeat, updating
// the position at the same time. Declaring availability while carrying an
// order violates the single-active-order invariant and fails with
// ErrCourierCarryingOrder.
//
// availableSince is reset only on a false→true flip, so repeated heartbeats
// do not push the courier to the back of the fairness queue.
func (c *Courier) SetAvailability(available bool, location kernel.GeoPoint, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.active {
		return ErrCourierInactive
	}
	if err := c.setLocation(location); err != nil {
		return err
	}

	if available == c.available {
		return nil
	}
	if available && c.currentOrderID != nil {
		return ErrCourierCarryingOrder
	}

	c.available = available
	if available {
		c.availableSince = now
	}
	c.recordStatusEvent(now)

	return nil
}

// UpdateLocation records a position heartbeat without touching availability.
func (c *Courier) UpdateLocation(location kernel.GeoPoint) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.active {
		return ErrCourierInactive
	}
	return c.setLocation(location)
}

// Reserve is the courier side of the assignment compare-and-set: it succeeds
// only if the courier is still active, available and unassigned, and flips it
// to busy on the given order. A racing coordinator that loses the reservation
// sees ErrCourierAlreadyAssigned (or ErrCourierNotAvailable) and moves to the
// next candidate.
func (c *Courier) Reserve(orderID kernel.UUID, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := orderID.Validate(); err != nil {
		return err
	}
	if !c.active {
		return ErrCourierInactive
	}
	if c.currentOrderID != nil {
		return fmt.Errorf("%w: order %s", ErrCourierAlreadyAssigned, c.currentOrderID)
	}
	if !c.available {
		return ErrCourierNotAvailable
	}

	id := orderID
	c.currentOrderID = &id
	c.available = false
	c.recordStatusEvent(now)

	return nil
}

// Release frees the courier from the given order, e.g. when the order is
// cancelled after assignment. It is idempotent: releasing a courier that does
// not hold the order (already released, or reassigned since) is a no-op, so
// a redelivered cancellation event cannot double-apply.
func (c *Courier) Release(orderID kernel.UUID, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.currentOrderID == nil || !c.currentOrderID.IsEqual(orderID) {
		return nil
	}

	c.currentOrderID = nil
	c.available = true
	c.availableSince = now
	c.recordStatusEvent(now)

	return nil
}

// CompleteDelivery releases the courier after a successful delivery and
// increments the cumulative delivery count. Idempotent the same way Release
// is: completing an order the courier no longer holds changes nothing.
func (c *Courier) CompleteDelivery(orderID kernel.UUID, now time.Time) error {
	held := c.currentOrderID != nil && c.currentOrderID.IsEqual(orderID)

	if err := c.Release(orderID, now); err != nil {
		return err
	}
	if held {
		c.deliveryCount++
	}

	return nil
}

// AddRating folds one customer rating into the running average.
// Ratings are on a 1..5 scale.
func (c *Courier) AddRating(score float64) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if score < 1 || score > 5 {
		return errs.NewValueIsOutOfRangeError("rating", score, 1, 5)
	}

	c.ratingSum += score
	c.ratingCount++
	return nil
}

// Deactivate takes the courier off the roster. Couriers are never deleted.
// A courier carrying an order cannot be deactivated.
func (c *Courier) Deactivate(now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.currentOrderID != nil {
		return ErrCourierCarryingOrder
	}
	if !c.active {
		return nil
	}

	c.active = false
	if c.available {
		c.available = false
		c.recordStatusEvent(now)
	}

	return nil
}

func (c *Courier) recordStatusEvent(now time.Time) {
	c.sequence++
	c.pendingEvents = append(c.pendingEvents, StatusEvent{
		CourierID:  c.id,
		Sequence:   c.sequence,
		Available:  c.available,
		OrderID:    c.currentOrderID,
		OccurredAt: now,
	})
}

func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

func (c *Courier) setVehicle(vehicle Vehicle) error {
	if err := vehicle.Validate(); err != nil {
		return err
	}
	c.vehicle = vehicle
	return nil
}

func (c *Courier) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}
