package commands

import (
	"errors"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/pkg/guard"
)

var ErrIssueTicketCommandIsNotConstructed = errors.New(
	"IssueTicketCommand must be created via NewIssueTicketCommand constructor",
)

// IssueTicketCommand requests a ticket issuance attempt for a paid order.
//
// Example:
//
//	cmd, err := NewIssueTicketCommand(orderID)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    // ErrInvalidOrderState, ErrAirlineAPI (recoverable) or infrastructure error
//	}
//	fmt.Println(result.TicketNumber)
type IssueTicketCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewIssueTicketCommand creates a command to issue a ticket for the given order.
// Validates that the order ID is a constructed UUID.
func NewIssueTicketCommand(orderID kernel.UUID) (IssueTicketCommand, error) {
	if err := orderID.Validate(); err != nil {
		return IssueTicketCommand{}, err
	}

	return IssueTicketCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrIssueTicketCommandIsNotConstructed if validation fails.
func (c IssueTicketCommand) Validate() error {
	return c.guard.Validate(ErrIssueTicketCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to issue a ticket for.
func (c IssueTicketCommand) OrderID() kernel.UUID {
	return c.orderID
}
