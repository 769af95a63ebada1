package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// ConsumerGroupWorkflow identifies the workflow reactions consumer group.
// It is also the inbox namespace for dedup keys.
const ConsumerGroupWorkflow = "fulfillment-workflow"

// DLQTopicSuffix is appended to the source topic when a message exhausts its
// processing attempts.
const DLQTopicSuffix = ".dlq"

// defaultHandleAttempts bounds the inline retries of one message before it
// is parked on the dead-letter topic.
const defaultHandleAttempts = 3

// WorkflowEventHandler reacts to order events coming back over the bus:
//
//   - order.ready triggers courier dispatch
//   - order.cancelled releases the assigned courier
//   - order.delivered releases the courier and counts the delivery
//
// Redeliveries are dropped through the inbox; failures are retried inline a
// bounded number of times and then parked on the <topic>.dlq topic, so one
// poisoned message cannot stall the partition.
type WorkflowEventHandler struct {
	inbox          ports.InboxRepository
	publisher      ports.EventPublisher
	assignHandler  commands.AssignCourierCommandHandler
	releaseHandler commands.ReleaseCourierCommandHandler
	maxAttempts    int
	logger         *slog.Logger
}

// NewWorkflowEventHandler creates the workflow reactions handler.
func NewWorkflowEventHandler(
	inbox ports.InboxRepository,
	publisher ports.EventPublisher,
	assignHandler commands.AssignCourierCommandHandler,
	releaseHandler commands.ReleaseCourierCommandHandler,
	logger *slog.Logger,
) *WorkflowEventHandler {
	return &WorkflowEventHandler{
		inbox:          inbox,
		publisher:      publisher,
		assignHandler:  assignHandler,
		releaseHandler: releaseHandler,
		maxAttempts:    defaultHandleAttempts,
		logger:         logger,
	}
}

// Topics returns the bus topics this handler subscribes to.
func (h *WorkflowEventHandler) Topics() []string {
	return []string{
		order.TopicOrderReady,
		order.TopicOrderCancelled,
		order.TopicOrderDelivered,
	}
}

// Handle processes one consumed message. Always consumes the message (nil
// return) unless the context is cancelled: unprocessable or exhausted
// messages go to the dead-letter topic instead of blocking the claim.
func (h *WorkflowEventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var payload commands.OrderEventPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		h.logger.Error("dropping malformed event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return h.deadLetter(ctx, msg)
	}

	orderID, err := kernel.UUIDFromString(payload.OrderID)
	if err != nil {
		h.logger.Error("dropping event with bad order id", "topic", msg.Topic, "orderId", payload.OrderID)
		return h.deadLetter(ctx, msg)
	}

	seen, err := h.inbox.Seen(ctx, ConsumerGroupWorkflow, orderID, payload.Sequence)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	for attempt := 1; ; attempt++ {
		err = h.react(ctx, msg.Topic, orderID, payload)
		if err == nil {
			// Recorded only after the reaction took effect, so a crash in
			// between is redelivered instead of silently lost. Messages
			// parked on the DLQ are never recorded and stay replayable.
			_, err = h.inbox.Record(ctx, ConsumerGroupWorkflow, orderID, payload.Sequence)
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= h.maxAttempts {
			h.logger.Error("parking event after repeated failures",
				"topic", msg.Topic, "orderId", payload.OrderID, "error", err)
			return h.deadLetter(ctx, msg)
		}

		h.logger.Warn("event handling failed, retrying",
			"topic", msg.Topic, "orderId", payload.OrderID, "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
}

func (h *WorkflowEventHandler) react(
	ctx context.Context,
	topic string,
	orderID kernel.UUID,
	payload commands.OrderEventPayload,
) error {
	switch topic {
	case order.TopicOrderReady:
		return h.dispatch(ctx, orderID)
	case order.TopicOrderCancelled, order.TopicOrderDelivered:
		return h.release(ctx, orderID, payload, topic == order.TopicOrderDelivered)
	default:
		return nil
	}
}

func (h *WorkflowEventHandler) dispatch(ctx context.Context, orderID kernel.UUID) error {
	cmd, err := commands.NewAssignCourierCommand(orderID)
	if err != nil {
		return err
	}

	err = h.assignHandler.Handle(ctx, cmd)
	switch {
	case errors.Is(err, commands.ErrNoCourierAvailable):
		// The retry job keeps looking.
		h.logger.Info("no courier available yet", "orderId", orderID.String())
		return nil
	case errors.Is(err, order.ErrOrderNotAwaitingAssignment):
		return nil
	default:
		return err
	}
}

func (h *WorkflowEventHandler) release(
	ctx context.Context,
	orderID kernel.UUID,
	payload commands.OrderEventPayload,
	completed bool,
) error {
	if payload.CourierID == nil {
		// Cancelled before any courier was involved.
		return nil
	}

	courierID, err := kernel.UUIDFromString(*payload.CourierID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewReleaseCourierCommand(courierID, orderID, completed)
	if err != nil {
		return err
	}

	return h.releaseHandler.Handle(ctx, cmd)
}

func (h *WorkflowEventHandler) deadLetter(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return h.publisher.Publish(ctx, msg.Topic+DLQTopicSuffix, string(msg.Key), msg.Value)
}
