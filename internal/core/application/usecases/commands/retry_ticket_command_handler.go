package commands

import (
	"context"
	"fmt"

	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/clock"
)

// RetryTicketCommandHandler re-runs ticket issuance for an order in the
// pending retry set. The attempt itself is identical to the initial issuance;
// only the gateway configuration differs (manual escalation runs with its own
// success threshold).
//
// Example:
//
//	handler := NewRetryTicketCommandHandler(uowFactory, retryGateway, pendingStore, clk)
//	cmd, _ := NewRetryTicketCommand(orderID)
//	result, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNotPending) {
//	    // order was never enqueued for retry, nothing was mutated
//	}
type RetryTicketCommandHandler struct {
	issuer ticketIssuer
}

// NewRetryTicketCommandHandler creates a handler for manual issuance retries.
// The gateway should be the one configured with the retry success threshold.
func NewRetryTicketCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.AirlineGateway,
	pending ports.PendingRetryStore,
	clk clock.Clock,
) RetryTicketCommandHandler {
	return RetryTicketCommandHandler{
		issuer: ticketIssuer{
			uowFactory: uowFactory,
			gateway:    gateway,
			pending:    pending,
			clk:        clk,
		},
	}
}

// Handle processes the retry command. Fails with ErrNotPending, mutating no
// state, when the order is absent from the pending retry set. On success the
// order leaves the set; on continued failure it remains there.
func (h RetryTicketCommandHandler) Handle(ctx context.Context, command RetryTicketCommand) (IssueTicketResult, error) {
	if err := command.Validate(); err != nil {
		return IssueTicketResult{}, err
	}

	if !h.issuer.pending.Contains(command.OrderID()) {
		return IssueTicketResult{}, fmt.Errorf("%w: order %s", ErrNotPending, command.OrderID())
	}

	return h.issuer.issue(ctx, command.OrderID())
}
