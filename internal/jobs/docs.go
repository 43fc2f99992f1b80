// Package jobs provides scheduled background tasks for the ticketing system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the ticketing service.
//
// # Available Jobs
//
// 1. PaymentTimeoutJob - Periodically cancels orders that stayed unpaid past
// the payment grace period. Guarded by a distributed lock so that only one
// service instance runs the sweep per tick.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(cancelExpiredHandler, schedule, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The payment timeout job schedule is configurable (REAPER_SCHEDULE) and uses
// cron expressions with a seconds field, e.g. "*/30 * * * * *" for every
// thirty seconds.
//
// # Error Handling
//
// - Losing the distributed lock race is routine multi-instance behavior and
//   is not logged as an error
// - All other failures are logged; the next tick retries from scratch
package jobs
