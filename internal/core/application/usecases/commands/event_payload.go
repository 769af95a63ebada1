package commands

import (
	"context"
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// OrderEventPayload is the wire representation of an order workflow event.
// Consumers deduplicate on the (OrderID, Sequence) pair, so both fields are
// always present.
type OrderEventPayload struct {
	OrderID    string    `json:"orderId"`
	Sequence   int64     `json:"sequence"`
	Status     string    `json:"status"`
	ActorRole  string    `json:"actorRole"`
	ActorID    *string   `json:"actorId,omitempty"`
	CourierID  *string   `json:"courierId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// CourierEventPayload is the wire representation of a courier availability
// change.
type CourierEventPayload struct {
	CourierID  string    `json:"courierId"`
	Sequence   int64     `json:"sequence"`
	Available  bool      `json:"available"`
	OrderID    *string   `json:"orderId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// stageOrderEvents serializes the order's pending events into the outbox
// within the current transaction and clears them from the aggregate.
func stageOrderEvents(ctx context.Context, outbox ports.OutboxRepository, ord *order.Order) error {
	events := ord.PendingEvents()
	if len(events) == 0 {
		return nil
	}

	messages := make([]ports.OutboxMessage, 0, len(events))
	for _, event := range events {
		payload := OrderEventPayload{
			OrderID:    event.OrderID.String(),
			Sequence:   event.Sequence,
			Status:     event.Status.String(),
			ActorRole:  event.ActorRole.String(),
			OccurredAt: event.OccurredAt,
		}
		if event.ActorID != nil {
			id := event.ActorID.String()
			payload.ActorID = &id
		}
		if event.CourierID != nil {
			id := event.CourierID.String()
			payload.CourierID = &id
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		messages = append(messages, ports.OutboxMessage{
			ID:          kernel.NewUUID(),
			AggregateID: event.OrderID,
			Sequence:    event.Sequence,
			Topic:       event.Topic,
			Payload:     body,
			CreatedAt:   event.OccurredAt,
		})
	}

	if err := outbox.Add(ctx, messages); err != nil {
		return err
	}

	ord.ClearPendingEvents()
	return nil
}

// stageCourierEvents serializes the courier's pending status events into the
// outbox within the current transaction and clears them from the aggregate.
func stageCourierEvents(ctx context.Context, outbox ports.OutboxRepository, cour *courier.Courier) error {
	events := cour.PendingEvents()
	if len(events) == 0 {
		return nil
	}

	messages := make([]ports.OutboxMessage, 0, len(events))
	for _, event := range events {
		payload := CourierEventPayload{
			CourierID:  event.CourierID.String(),
			Sequence:   event.Sequence,
			Available:  event.Available,
			OccurredAt: event.OccurredAt,
		}
		if event.OrderID != nil {
			id := event.OrderID.String()
			payload.OrderID = &id
		}

		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		messages = append(messages, ports.OutboxMessage{
			ID:          kernel.NewUUID(),
			AggregateID: event.CourierID,
			Sequence:    event.Sequence,
			Topic:       order.TopicCourierStatusChanged,
			Payload:     body,
			CreatedAt:   event.OccurredAt,
		})
	}

	if err := outbox.Add(ctx, messages); err != nil {
		return err
	}

	cour.ClearPendingEvents()
	return nil
}
