// Package jobs provides scheduled background tasks for the fulfillment
// workflow.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the workflow engine.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Runs every second to publish staged workflow events to the bus
// 2. AssignmentRetryJob - Runs every five seconds to retry dispatch for unassigned orders
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(uowFactory, outbox, publisher, assignHandler, batchSize, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
//   - The relay records publish failures on the message; exhausted messages
//     are dead-lettered by the outbox
//   - The retry sweep ignores expected business errors (no courier in range,
//     order already assigned or terminal)
//   - Failed job starts will stop any already running jobs
package jobs
