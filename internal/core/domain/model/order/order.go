package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
	// ErrOrderNotAwaitingAssignment is returned when assigning a courier to
	// an order that is not in ready_for_pickup.
	ErrOrderNotAwaitingAssignment = errors.New("order is not awaiting courier assignment")
	// ErrOrderAlreadyAssigned is returned when assigning a courier to an
	// order that already has one.
	ErrOrderAlreadyAssigned = errors.New("order already has an assigned courier")
	// ErrItemsAreRequired is returned when creating an order without items.
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
	// ErrDeliveryAddressIsRequired is returned when creating an order without
	// a delivery address.
	ErrDeliveryAddressIsRequired = errs.NewValueIsRequiredError("delivery address")
)

// HistoryEntry records one accepted status transition for auditing. The
// history is append-only: entries are never rewritten or removed.
type HistoryEntry struct {
	// Status is the status entered by the transition.
	Status Status
	// ActorRole is the role that requested the transition.
	ActorRole Role
	// ActorID is nil for system-initiated transitions.
	ActorID *kernel.UUID
	// At is the transition time.
	At time.Time
	// Note carries optional operator-facing context (e.g. a cancel reason).
	Note string
}

// Order is the aggregate root driving a food order through the multi-party
// fulfillment lifecycle (customer → restaurant → courier → customer).
//
// Order follows these invariants:
//   - The total price equals Σ(item price × quantity) + delivery fee,
//     computed once at creation and never silently recomputed
//   - All mutations go through state-machine-approved transitions
//   - Each accepted transition appends a history entry and records a
//     workflow event with a per-order monotonically increasing sequence
//   - Orders are never deleted, only terminalized (delivered/cancelled)
//   - Can only be created through NewOrder or RestoreOrder
type Order struct {
	id           kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID
	// courierID is the assigned courier (nil until assignment)
	courierID *kernel.UUID

	// items is the immutable line-item snapshot taken at creation
	items           []Item
	deliveryAddress string
	// pickupPoint is the restaurant's pickup coordinates, snapshotted from
	// the catalog so the assignment engine never calls back out
	pickupPoint kernel.GeoPoint
	// paymentMethod is captured opaquely; payment processing is external
	paymentMethod    string
	deliveryFeeCents int64
	totalPriceCents  int64

	status  Status
	history []HistoryEntry

	// verificationCode is set while the code is live (ready_for_pickup /
	// on_delivery) and cleared once consumed
	verificationCode *VerificationCode
	codeAttempts     int

	createdAt   time.Time
	acceptedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time

	// sequence is the per-order event counter; the last used value
	sequence int64
	// version supports optimistic concurrency in the repository
	version int64

	// pendingEvents are workflow events recorded since the aggregate was
	// loaded, drained into the outbox by the application layer
	pendingEvents []WorkflowEvent

	guard guard.ConstructorGuard
}

// NewOrder creates a new Order in pending status with the line-item snapshot
// and a total computed once from items plus the delivery fee. Records the
// order.created event and the initial history entry.
//
// Parameters:
//   - id: unique order identifier
//   - customerID: the ordering customer
//   - restaurantID: the preparing restaurant
//   - pickupPoint: the restaurant's pickup coordinates
//   - items: at least one validated line item
//   - deliveryAddress: human-readable destination (must be non-empty)
//   - paymentMethod: opaque payment method tag
//   - deliveryFeeCents: delivery fee in cents (must not be negative)
//   - now: creation time
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	pickupPoint kernel.GeoPoint,
	items []Item,
	deliveryAddress string,
	paymentMethod string,
	deliveryFeeCents int64,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:    Pending,
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setPickupPoint(pickupPoint),
		o.setItems(items),
		o.setDeliveryAddress(deliveryAddress),
		o.setDeliveryFeeCents(deliveryFeeCents),
	); err != nil {
		return nil, err
	}

	o.paymentMethod = paymentMethod
	o.totalPriceCents = o.computeTotalCents()

	o.appendHistory(Pending, SystemActor(), now, "order created")
	o.recordEvent(Pending, SystemActor(), now)

	return o, nil
}

// RestoreOrder reconstructs an Order aggregate from persistent storage,
// preserving status, history, verification code, sequence and version.
// No events are recorded; the restored order behaves identically to one that
// reached the same state through domain operations.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	courierID *kernel.UUID,
	pickupPoint kernel.GeoPoint,
	items []Item,
	deliveryAddress string,
	paymentMethod string,
	deliveryFeeCents int64,
	totalPriceCents int64,
	status Status,
	history []HistoryEntry,
	verificationCode *VerificationCode,
	codeAttempts int,
	createdAt time.Time,
	acceptedAt *time.Time,
	pickedUpAt *time.Time,
	deliveredAt *time.Time,
	sequence int64,
	version int64,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setPickupPoint(pickupPoint),
		o.setItems(items),
		o.setDeliveryAddress(deliveryAddress),
		o.setDeliveryFeeCents(deliveryFeeCents),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
		o.courierID = courierID
	}
	if verificationCode != nil {
		if err := verificationCode.Validate(); err != nil {
			return nil, err
		}
		o.verificationCode = verificationCode
	}

	o.paymentMethod = paymentMethod
	o.totalPriceCents = totalPriceCents
	o.status = status
	o.history = history
	o.codeAttempts = codeAttempts
	o.createdAt = createdAt
	o.acceptedAt = acceptedAt
	o.pickedUpAt = pickedUpAt
	o.deliveredAt = deliveredAt
	o.sequence = sequence
	o.version = version

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the ordering customer's identifier.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// RestaurantID returns the preparing restaurant's identifier.
func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// CourierID returns the assigned courier's identifier, nil if unassigned.
func (o *Order) CourierID() *kernel.UUID {
	return o.courierID
}

// Items returns a copy of the line-item snapshot.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// DeliveryAddress returns the destination address.
func (o *Order) DeliveryAddress() string {
	return o.deliveryAddress
}

// PickupPoint returns the restaurant's pickup coordinates.
func (o *Order) PickupPoint() kernel.GeoPoint {
	return o.pickupPoint
}

// PaymentMethod returns the opaque payment method tag.
func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

// DeliveryFeeCents returns the delivery fee in cents.
func (o *Order) DeliveryFeeCents() int64 {
	return o.deliveryFeeCents
}

// TotalPriceCents returns the total computed at creation, in cents.
func (o *Order) TotalPriceCents() int64 {
	return o.totalPriceCents
}

// Status returns the current workflow status.
func (o *Order) Status() Status {
	return o.status
}

// History returns a copy of the append-only status history.
func (o *Order) History() []HistoryEntry {
	history := make([]HistoryEntry, len(o.history))
	copy(history, o.history)
	return history
}

// VerificationCode returns the live proof-of-delivery code, nil once consumed
// or not yet generated. Exposed only on customer-facing snapshots.
func (o *Order) VerificationCode() *VerificationCode {
	return o.verificationCode
}

// CodeAttempts returns the count of failed verification submissions.
func (o *Order) CodeAttempts() int {
	return o.codeAttempts
}

// CreatedAt returns the creation time.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// AcceptedAt returns the restaurant acceptance time, nil if not accepted.
func (o *Order) AcceptedAt() *time.Time {
	return o.acceptedAt
}

// PickedUpAt returns the courier pickup time, nil if not picked up.
func (o *Order) PickedUpAt() *time.Time {
	return o.pickedUpAt
}

// DeliveredAt returns the delivery time, nil if not delivered.
func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

// Sequence returns the last used per-order event sequence number.
func (o *Order) Sequence() int64 {
	return o.sequence
}

// Version returns the optimistic-concurrency version loaded from storage.
func (o *Order) Version() int64 {
	return o.version
}

// PendingEvents returns the workflow events recorded since the aggregate was
// loaded. The application layer drains them into the outbox in the same
// transaction as the state change.
func (o *Order) PendingEvents() []WorkflowEvent {
	events := make([]WorkflowEvent, len(o.pendingEvents))
	copy(events, o.pendingEvents)
	return events
}

// ClearPendingEvents discards recorded events after they were handed to the
// outbox.
func (o *Order) ClearPendingEvents() {
	o.pendingEvents = nil
}

// TransitionOptions carries the optional inputs of RequestTransition.
type TransitionOptions struct {
	// VerificationCode is the courier-submitted proof-of-delivery code,
	// required when the target status is delivered.
	VerificationCode string
	// Note is attached to the history entry (e.g. a cancel reason).
	Note string
}

// RequestTransition applies one workflow transition requested by an actor.
//
// The transition is accepted only when:
//   - the source/target pair is an edge of the transition table
//     (ErrInvalidTransition otherwise)
//   - the actor's role may request that edge, and the actor's identity
//     matches the order's own customer/restaurant or the assigned courier
//     (ErrUnauthorized otherwise)
//   - for delivered, the submitted code matches the stored verification code
//     (ErrVerificationFailed otherwise; the failure is counted and no state
//     changes)
//
// On success the order's status, timestamps and verification code are
// updated, a history entry is appended and a workflow event is recorded.
//
// Cancelling an already-cancelled order is a no-op success so that
// at-least-once command delivery never turns a redelivered cancel into an
// error.
func (o *Order) RequestTransition(target Status, actor Actor, opts TransitionOptions, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}

	// Idempotent cancel: tolerate redelivered cancellation commands.
	if o.status == Cancelled && target == Cancelled {
		return nil
	}

	if err := o.status.CanTransition(target, actor.Role()); err != nil {
		return err
	}

	if err := o.authorizeActor(actor); err != nil {
		return err
	}

	if target == Delivered {
		if err := o.consumeVerificationCode(opts.VerificationCode); err != nil {
			return err
		}
	}

	o.status = target
	switch target {
	case Processing:
		at := now
		o.acceptedAt = &at
	case ReadyForPickup:
		code, err := GenerateVerificationCode()
		if err != nil {
			return err
		}
		o.verificationCode = &code
	case OnDelivery:
		at := now
		o.pickedUpAt = &at
	case Delivered:
		at := now
		o.deliveredAt = &at
	}

	o.appendHistory(target, actor, now, opts.Note)
	o.recordEvent(target, actor, now)

	return nil
}

// Assign records the assignment decision: the courier reference is set while
// the status stays ready_for_pickup (pickup is a separate courier-requested
// transition). Emits order.assigned.
//
// Returns ErrOrderNotAwaitingAssignment if the order is not in
// ready_for_pickup, ErrOrderAlreadyAssigned if a courier is already set.
func (o *Order) Assign(courierID kernel.UUID, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := courierID.Validate(); err != nil {
		return err
	}

	if o.status != ReadyForPickup {
		return fmt.Errorf("%w: status is %s", ErrOrderNotAwaitingAssignment, o.status)
	}
	if o.courierID != nil {
		return fmt.Errorf("%w: courier %s", ErrOrderAlreadyAssigned, o.courierID)
	}

	o.courierID = &courierID

	o.appendHistory(ReadyForPickup, SystemActor(), now, "courier assigned")
	o.sequence++
	o.pendingEvents = append(o.pendingEvents, WorkflowEvent{
		OrderID:    o.id,
		Sequence:   o.sequence,
		Topic:      TopicOrderAssigned,
		Status:     o.status,
		ActorRole:  RoleSystem,
		CourierID:  &courierID,
		OccurredAt: now,
	})

	return nil
}

// EligibleForAssignment reports whether the assignment engine may still
// reserve a courier for this order. Checked again immediately before a
// reservation commits, so a concurrent cancellation aborts the search.
func (o *Order) EligibleForAssignment() bool {
	return o.status == ReadyForPickup && o.courierID == nil
}

// authorizeActor enforces identity-level gating on top of the role table:
// customers act only on their own orders, restaurants only on theirs, and
// courier transitions are restricted to the assigned courier.
func (o *Order) authorizeActor(actor Actor) error {
	switch actor.Role() {
	case RoleCustomer:
		if !actor.IsIdentity(o.customerID) {
			return fmt.Errorf("%w: not the order's customer", ErrUnauthorized)
		}
	case RoleRestaurant:
		if !actor.IsIdentity(o.restaurantID) {
			return fmt.Errorf("%w: not the order's restaurant", ErrUnauthorized)
		}
	case RoleCourier:
		if o.courierID == nil {
			return fmt.Errorf("%w: no courier assigned to order", ErrUnauthorized)
		}
		if !actor.IsIdentity(*o.courierID) {
			return fmt.Errorf("%w: not the assigned courier", ErrUnauthorized)
		}
	case RoleSystem:
		// The engine itself; identity gating does not apply.
	default:
		return fmt.Errorf("%w: role %s", ErrUnauthorized, actor.Role())
	}

	return nil
}

// consumeVerificationCode validates the submitted proof-of-delivery code and
// clears it on success so the same code cannot confirm a future order.
// A mismatch is counted but mutates nothing else.
func (o *Order) consumeVerificationCode(submitted string) error {
	if o.verificationCode == nil || !o.verificationCode.Matches(submitted) {
		o.codeAttempts++
		return ErrVerificationFailed
	}

	o.verificationCode = nil
	return nil
}

func (o *Order) appendHistory(status Status, actor Actor, at time.Time, note string) {
	o.history = append(o.history, HistoryEntry{
		Status:    status,
		ActorRole: actor.Role(),
		ActorID:   actor.ID(),
		At:        at,
		Note:      note,
	})
}

func (o *Order) recordEvent(status Status, actor Actor, at time.Time) {
	o.sequence++
	o.pendingEvents = append(o.pendingEvents, WorkflowEvent{
		OrderID:    o.id,
		Sequence:   o.sequence,
		Topic:      topicForStatus(status),
		Status:     status,
		ActorRole:  actor.Role(),
		ActorID:    actor.ID(),
		CourierID:  o.courierID,
		OccurredAt: at,
	})
}

func (o *Order) computeTotalCents() int64 {
	var total int64
	for _, item := range o.items {
		total += item.SubtotalCents()
	}
	return total + o.deliveryFeeCents
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer id", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurant id", err)
	}
	o.restaurantID = restaurantID
	return nil
}

func (o *Order) setPickupPoint(pickupPoint kernel.GeoPoint) error {
	if err := pickupPoint.Validate(); err != nil {
		return err
	}
	o.pickupPoint = pickupPoint
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func (o *Order) setDeliveryAddress(deliveryAddress string) error {
	if deliveryAddress == "" {
		return ErrDeliveryAddressIsRequired
	}
	o.deliveryAddress = deliveryAddress
	return nil
}

func (o *Order) setDeliveryFeeCents(deliveryFeeCents int64) error {
	if deliveryFeeCents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("delivery fee",
			fmt.Errorf("%d is negative", deliveryFeeCents))
	}
	o.deliveryFeeCents = deliveryFeeCents
	return nil
}
