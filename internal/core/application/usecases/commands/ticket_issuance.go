package commands

import (
	"context"
	"errors"
	"fmt"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/clock"
)

var (
	// ErrInvalidOrderState indicates the operation was attempted from an order
	// state that does not permit it (e.g. issuing a ticket for an unpaid or
	// cancelled order, or for one whose issuance is already in flight).
	ErrInvalidOrderState = errors.New("order state does not permit ticket issuance")

	// ErrNotPending indicates a retry was requested for an order that is not
	// in the pending retry set.
	ErrNotPending = errors.New("order is not awaiting retry")
)

// IssueTicketResult is the success payload of an issuance attempt.
type IssueTicketResult struct {
	OrderID      kernel.UUID
	TicketNumber string
	Message      string
}

// ticketIssuer drives one order through a single issuance attempt against the
// airline gateway. Shared by the issue and retry command handlers, which differ
// only in their precondition checks and gateway configuration.
//
// The attempt runs in three steps, each in its own short transaction:
//
//  1. Advance the order to TicketingInProgress with a status-guarded update and
//     commit, so a crash mid-call leaves visible, recoverable state. The guard
//     also serializes concurrent attempts: the loser observes a conflict and
//     fails with ErrInvalidOrderState instead of double-issuing.
//  2. Call the airline gateway with the caller's context.
//  3. Record the outcome: Ticketed plus removal from the pending set on
//     success, TicketingFailed plus insertion into the pending set on failure.
type ticketIssuer struct {
	uowFactory OrderUoWFactory
	gateway    ports.AirlineGateway
	pending    ports.PendingRetryStore
	clk        clock.Clock
}

func (ti ticketIssuer) issue(ctx context.Context, orderID kernel.UUID) (IssueTicketResult, error) {
	if err := ti.markInProgress(ctx, orderID); err != nil {
		return IssueTicketResult{}, err
	}

	ticketNumber, issueErr := ti.gateway.IssueTicket(ctx, orderID)
	if issueErr != nil {
		return IssueTicketResult{}, ti.recordFailure(ctx, orderID, issueErr)
	}

	if err := ti.recordSuccess(ctx, orderID, ticketNumber); err != nil {
		return IssueTicketResult{}, err
	}

	return IssueTicketResult{
		OrderID:      orderID,
		TicketNumber: ticketNumber,
		Message:      fmt.Sprintf("ticket %s issued for order %s", ticketNumber, orderID),
	}, nil
}

// markInProgress transitions the order to TicketingInProgress and commits
// before the gateway is called. The read-current-state to write-in-progress
// step is atomic through the status-guarded update.
func (ti ticketIssuer) markInProgress(ctx context.Context, orderID kernel.UUID) error {
	uow := ti.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	ord, err := repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	observed := ord.Status()
	if err = ord.StartTicketing(ti.clk.Now()); err != nil {
		return fmt.Errorf("%w: order %s is %s", ErrInvalidOrderState, orderID, observed)
	}

	if err = repo.UpdateStatusFrom(ctx, ord, observed); err != nil {
		if errors.Is(err, ports.ErrOrderStatusConflict) {
			return fmt.Errorf("%w: order %s was advanced concurrently", ErrInvalidOrderState, orderID)
		}
		return err
	}

	return uow.Commit(ctx)
}

// recordSuccess finalizes a successful attempt: Ticketed with the issued
// ticket number, and the order leaves the pending retry set.
func (ti ticketIssuer) recordSuccess(ctx context.Context, orderID kernel.UUID, ticketNumber string) error {
	uow := ti.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	ord, err := repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if err = ord.CompleteTicketing(ticketNumber, ti.clk.Now()); err != nil {
		return err
	}

	if err = repo.Update(ctx, ord); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	ti.pending.Remove(orderID)
	return nil
}

// recordFailure marks the order TicketingFailed and enqueues it for retry.
// The write uses a detached context so that the failure is still recorded when
// the attempt was cut short by caller cancellation or shutdown.
func (ti ticketIssuer) recordFailure(ctx context.Context, orderID kernel.UUID, cause error) error {
	wctx := context.WithoutCancel(ctx)

	uow := ti.uowFactory.Create()
	if err := uow.Begin(wctx); err != nil {
		return errors.Join(cause, err)
	}

	defer func() {
		_ = uow.Rollback(wctx)
	}()

	repo := uow.OrderRepository()
	ord, err := repo.Get(wctx, orderID)
	if err != nil {
		return errors.Join(cause, err)
	}

	if err = ord.FailTicketing(ti.clk.Now()); err != nil {
		return errors.Join(cause, err)
	}

	if err = repo.Update(wctx, ord); err != nil {
		return errors.Join(cause, err)
	}

	if err = uow.Commit(wctx); err != nil {
		return errors.Join(cause, err)
	}

	ti.pending.Add(orderID)
	return fmt.Errorf("ticket issuance failed for order %s: %w", orderID, cause)
}
