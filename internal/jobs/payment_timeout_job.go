package jobs

import (
	"context"
	"errors"
	"log/slog"

	"ticketing/internal/core/application/usecases/commands"
	"ticketing/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// PaymentTimeoutJob periodically cancels orders that stayed unpaid past the
// payment grace period. The underlying command handler takes a distributed
// lock, so across a fleet of instances exactly one runs the sweep per tick.
type PaymentTimeoutJob struct {
	handler  commands.CancelExpiredOrdersCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewPaymentTimeoutJob creates the payment timeout job. The schedule is a cron
// expression with a seconds field, e.g. "*/30 * * * * *".
func NewPaymentTimeoutJob(
	handler commands.CancelExpiredOrdersCommandHandler,
	schedule string,
	logger *slog.Logger,
) *PaymentTimeoutJob {
	return &PaymentTimeoutJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "payment_timeout_job"),
	}
}

// Start begins the payment timeout job on its configured schedule.
func (j *PaymentTimeoutJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx := context.Background()
		cmd := commands.NewCancelExpiredOrdersCommand()

		cancelled, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			// Another instance holding the lock is routine, not an error.
			if !errors.Is(err, ports.ErrLockBusy) {
				j.logger.ErrorContext(ctx, "Payment timeout job failed", "error", err)
			}
			return
		}

		if cancelled > 0 {
			j.logger.InfoContext(ctx, "Cancelled expired orders", "count", cancelled)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Payment timeout job started", "schedule", j.schedule)
	return nil
}

// Stop stops the payment timeout job.
func (j *PaymentTimeoutJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Payment timeout job stopped")
}
