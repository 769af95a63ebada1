package order

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Stable event topics published on the workflow bus. Delivery is
// at-least-once with no ordering guarantee across topics, so consumers must
// be idempotent keyed on (order id, sequence).
const (
	TopicOrderCreated   = "order.created"
	TopicOrderAccepted  = "order.accepted"
	TopicOrderReady     = "order.ready"
	TopicOrderAssigned  = "order.assigned"
	TopicOrderDelivered = "order.delivered"
	TopicOrderCancelled = "order.cancelled"

	// TopicOrderStatusChanged carries the transitions without a dedicated
	// topic (handoff to the restaurant, pickup by the courier).
	TopicOrderStatusChanged = "order.status_changed"

	// TopicCourierStatusChanged carries courier availability flips so the
	// courier roster stays synchronized.
	TopicCourierStatusChanged = "courier.status_changed"
)

// WorkflowEvent is one accepted state transition or assignment decision,
// recorded on the aggregate and drained into the outbox within the same
// transaction as the state change.
type WorkflowEvent struct {
	// OrderID is the order the event belongs to.
	OrderID kernel.UUID
	// Sequence increases monotonically per order; together with OrderID it is
	// the idempotency key for consumers.
	Sequence int64
	// Topic is one of the Topic* constants.
	Topic string
	// Status is the order status after the transition.
	Status Status
	// ActorRole and ActorID identify who caused the transition.
	ActorRole Role
	// ActorID is nil for system-initiated events.
	ActorID *kernel.UUID
	// CourierID is set on assignment and cancellation events so roster
	// consumers can release or claim couriers without loading the order.
	CourierID *kernel.UUID
	// OccurredAt is the transition time.
	OccurredAt time.Time
}

// topicForStatus maps a newly entered status to its event topic.
func topicForStatus(s Status) string {
	switch s {
	case Pending:
		return TopicOrderCreated
	case Processing:
		return TopicOrderAccepted
	case ReadyForPickup:
		return TopicOrderReady
	case Delivered:
		return TopicOrderDelivered
	case Cancelled:
		return TopicOrderCancelled
	default:
		return TopicOrderStatusChanged
	}
}
