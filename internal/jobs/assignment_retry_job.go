package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/robfig/cron/v3"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// AssignmentRetryJob periodically sweeps orders that are ready for pickup
// and still unassigned, and retries dispatch for each. This is the safety
// net behind the event-driven assignment path: if the bus reaction failed or
// no courier was around at the time, the order is picked up here.
type AssignmentRetryJob struct {
	uowFactory ports.UnitOfWorkFactory
	handler    commands.AssignCourierCommandHandler
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewAssignmentRetryJob creates the retry sweep. Runs every five seconds.
func NewAssignmentRetryJob(
	uowFactory ports.UnitOfWorkFactory,
	handler commands.AssignCourierCommandHandler,
	logger *slog.Logger,
) *AssignmentRetryJob {
	return &AssignmentRetryJob{
		uowFactory: uowFactory,
		handler:    handler,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "assignment_retry_job"),
	}
}

// Start begins the periodic sweep.
func (j *AssignmentRetryJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", j.sweep)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Assignment retry job started (running every 5 seconds)")
	return nil
}

// Stop stops the sweep.
func (j *AssignmentRetryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Assignment retry job stopped")
}

func (j *AssignmentRetryJob) sweep() {
	ctx := context.Background()

	awaiting, err := j.uowFactory.Create().OrderRepository().GetAllAwaitingAssignment(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list orders awaiting assignment", "error", err)
		return
	}

	for _, pending := range awaiting {
		cmd, cmdErr := commands.NewAssignCourierCommand(pending.ID())
		if cmdErr != nil {
			j.logger.ErrorContext(ctx, "Failed to build assignment command",
				"orderId", pending.ID().String(), "error", cmdErr)
			continue
		}

		err = j.handler.Handle(ctx, cmd)
		switch {
		case err == nil:
			j.logger.InfoContext(ctx, "Order assigned by retry sweep", "orderId", pending.ID().String())
		case errors.Is(err, commands.ErrNoCourierAvailable),
			errors.Is(err, order.ErrOrderNotAwaitingAssignment):
			// Expected while the pool is empty or the order moved on.
		default:
			j.logger.ErrorContext(ctx, "Assignment retry failed",
				"orderId", pending.ID().String(), "error", err)
		}
	}
}
