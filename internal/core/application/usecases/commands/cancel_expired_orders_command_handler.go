package commands

import (
	"context"
	"log/slog"
	"time"

	"ticketing/internal/core/domain/model/order"
	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/clock"
)

// PaymentTimeoutLockName is the distributed lock serializing the timeout sweep
// across all running service instances.
const PaymentTimeoutLockName = "payment-timeout-reaper"

// CancelExpiredOrdersCommandHandler cancels orders that stayed in
// PendingPayment past the configured grace period. The sweep is guarded by a
// distributed lock so that only one instance executes it per tick cluster-wide.
//
// Failure semantics:
//   - lock already held elsewhere: returns ports.ErrLockBusy, the routine
//     skip signal for the scheduling job;
//   - a single order failing to save: logged and skipped, the rest of the
//     batch proceeds;
//   - storage unreachable: the error propagates, the tick is lost, the next
//     scheduled tick retries.
type CancelExpiredOrdersCommandHandler struct {
	uowFactory  OrderUoWFactory
	lock        ports.DistributedLock
	clk         clock.Clock
	gracePeriod time.Duration
	lockMaxHold time.Duration
	logger      *slog.Logger
}

// NewCancelExpiredOrdersCommandHandler creates a handler for the timeout sweep.
// gracePeriod is how long an order may stay unpaid; lockMaxHold bounds how long
// a crashed instance can keep the sweep lock.
func NewCancelExpiredOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	lock ports.DistributedLock,
	clk clock.Clock,
	gracePeriod time.Duration,
	lockMaxHold time.Duration,
	logger *slog.Logger,
) CancelExpiredOrdersCommandHandler {
	return CancelExpiredOrdersCommandHandler{
		uowFactory:  uowFactory,
		lock:        lock,
		clk:         clk,
		gracePeriod: gracePeriod,
		lockMaxHold: lockMaxHold,
		logger:      logger.With("component", "cancel_expired_orders"),
	}
}

// Handle runs one sweep: acquire the lock (or return ports.ErrLockBusy), scan
// for orders unpaid past the cutoff, cancel each in its own short transaction,
// release the lock on every exit path. Returns the number of cancelled orders.
func (h CancelExpiredOrdersCommandHandler) Handle(ctx context.Context, command CancelExpiredOrdersCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	lease, err := h.lock.TryAcquire(ctx, PaymentTimeoutLockName, h.lockMaxHold)
	if err != nil {
		return 0, err
	}

	defer func() {
		if releaseErr := h.lock.Release(context.WithoutCancel(ctx), lease); releaseErr != nil {
			h.logger.ErrorContext(ctx, "Failed to release payment timeout lock", "error", releaseErr)
		}
	}()

	cutoff := h.clk.Now().Add(-h.gracePeriod)
	expired, err := h.scanExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, ord := range expired {
		if cancelErr := h.cancelOne(ctx, ord); cancelErr != nil {
			// One bad order must not abort the rest of the batch.
			h.logger.ErrorContext(ctx, "Failed to cancel expired order",
				"orderId", ord.ID().String(), "error", cancelErr)
			continue
		}
		cancelled++
	}

	return cancelled, nil
}

func (h CancelExpiredOrdersCommandHandler) scanExpired(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	uow := h.uowFactory.Create()
	return uow.OrderRepository().GetAllInStatusCreatedBefore(ctx, order.PendingPayment, cutoff)
}

// cancelOne cancels a single order in its own transaction. The status-guarded
// update keeps the cancellation atomic against a concurrent payment: if the
// order left PendingPayment in the meantime, the write is refused and reported.
func (h CancelExpiredOrdersCommandHandler) cancelOne(ctx context.Context, ord *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	observed := ord.Status()
	if err := ord.Cancel(h.clk.Now()); err != nil {
		return err
	}

	if err := uow.OrderRepository().UpdateStatusFrom(ctx, ord, observed); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
