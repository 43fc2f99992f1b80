package commands

import (
	"context"

	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/clock"
)

// IssueTicketCommandHandler orchestrates a single ticket issuance attempt.
// Validates that the order is eligible (Paid or TicketingFailed), serializes
// concurrent attempts through the TicketingInProgress transition, calls the
// airline gateway, and records the outcome.
//
// Example:
//
//	handler := NewIssueTicketCommandHandler(uowFactory, gateway, pendingStore, clk)
//	cmd, _ := NewIssueTicketCommand(orderID)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrInvalidOrderState):
//	    // order not eligible or attempt already in flight
//	case errors.Is(err, ports.ErrAirlineAPI):
//	    // recoverable: order is now in the pending retry set
//	case err != nil:
//	    // infrastructure failure
//	default:
//	    log.Printf("issued %s", result.TicketNumber)
//	}
type IssueTicketCommandHandler struct {
	issuer ticketIssuer
}

// NewIssueTicketCommandHandler creates a handler for ticket issuance.
// The gateway should be the one configured with the initial-issuance success
// threshold.
func NewIssueTicketCommandHandler(
	uowFactory OrderUoWFactory,
	gateway ports.AirlineGateway,
	pending ports.PendingRetryStore,
	clk clock.Clock,
) IssueTicketCommandHandler {
	return IssueTicketCommandHandler{
		issuer: ticketIssuer{
			uowFactory: uowFactory,
			gateway:    gateway,
			pending:    pending,
			clk:        clk,
		},
	}
}

// Handle processes the issue ticket command.
// On gateway failure the order ends up TicketingFailed and in the pending
// retry set; the returned error wraps ports.ErrAirlineAPI and is a recoverable
// outcome, not a system fault.
func (h IssueTicketCommandHandler) Handle(ctx context.Context, command IssueTicketCommand) (IssueTicketResult, error) {
	if err := command.Validate(); err != nil {
		return IssueTicketResult{}, err
	}

	return h.issuer.issue(ctx, command.OrderID())
}
