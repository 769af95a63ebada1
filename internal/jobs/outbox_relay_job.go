package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// relayPublishTimeout bounds one publish attempt so a stalled broker cannot
// freeze the relay tick.
const relayPublishTimeout = 5 * time.Second

// OutboxRelayJob drains staged workflow events to the bus. Runs every second,
// publishing pending messages oldest first; a failed publish increments the
// message's attempt counter until the outbox dead-letters it, and parks the
// rest of that aggregate's messages until the next tick so per-order event
// order is preserved. Delivery is at-least-once: a crash between publish and
// mark re-sends the message, and consumers dedup on (aggregate id, sequence).
type OutboxRelayJob struct {
	outbox    ports.OutboxRepository
	publisher ports.EventPublisher
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOutboxRelayJob creates the relay. batchSize bounds one tick's drain.
func NewOutboxRelayJob(
	outbox ports.OutboxRepository,
	publisher ports.EventPublisher,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelayJob {
	return &OutboxRelayJob{
		outbox:    outbox,
		publisher: publisher,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger.With("component", "outbox_relay_job"),
	}
}

// Start begins the relay loop.
func (j *OutboxRelayJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", j.drain)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started (running every second)")
	return nil
}

// Stop stops the relay loop.
func (j *OutboxRelayJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}

func (j *OutboxRelayJob) drain() {
	ctx := context.Background()

	pending, err := j.outbox.GetPending(ctx, j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to load pending outbox messages", "error", err)
		return
	}

	// Aggregates whose oldest message failed this tick. Publishing their
	// newer messages anyway would reorder a single order's events on the
	// bus, so the rest of that aggregate's queue waits for the next tick.
	stalled := make(map[kernel.UUID]struct{})

	for _, message := range pending {
		if _, skip := stalled[message.AggregateID]; skip {
			continue
		}

		publishCtx, cancel := context.WithTimeout(ctx, relayPublishTimeout)
		err = j.publisher.Publish(publishCtx, message.Topic, message.AggregateID.String(), message.Payload)
		cancel()

		if err != nil {
			j.logger.ErrorContext(ctx, "Publish failed",
				"topic", message.Topic, "messageId", message.ID.String(), "error", err)
			stalled[message.AggregateID] = struct{}{}
			if markErr := j.outbox.MarkFailed(ctx, message.ID); markErr != nil {
				j.logger.ErrorContext(ctx, "Failed to record publish failure",
					"messageId", message.ID.String(), "error", markErr)
			}
			continue
		}

		if markErr := j.outbox.MarkPublished(ctx, message.ID); markErr != nil {
			j.logger.ErrorContext(ctx, "Failed to mark message published",
				"messageId", message.ID.String(), "error", markErr)
		}
	}
}
