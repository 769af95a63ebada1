package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// MessageHandler processes a single consumed message. Returning an error
// aborts the claim and lets the group redeliver from the last committed
// offset.
type MessageHandler func(ctx context.Context, message *sarama.ConsumerMessage) error

// Consumer wraps a Sarama consumer group and dispatches messages to a
// handler.
type Consumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler MessageHandler
	logger  *slog.Logger
}

// NewConsumer creates a Kafka consumer subscribed to the given topics.
func NewConsumer(
	brokers []string,
	groupID string,
	topics []string,
	handler MessageHandler,
	logger *slog.Logger,
) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:   group,
		topics:  topics,
		handler: handler,
		logger:  logger,
	}, nil
}

// Run consumes until the context is cancelled, resuming after rebalances and
// transient broker errors.
func (c *Consumer) Run(ctx context.Context) error {
	h := &groupHandler{c: c}

	for {
		if err := c.group.Consume(ctx, c.topics, h); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("consume error", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close shuts down the consumer group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct{ c *Consumer }

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.c.handler(sess.Context(), msg); err != nil {
			h.c.logger.Error("handle failed, retrying claim",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
			return err
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
