package commands

import (
	"errors"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/pkg/guard"
)

var ErrRetryTicketCommandIsNotConstructed = errors.New(
	"RetryTicketCommand must be created via NewRetryTicketCommand constructor",
)

// RetryTicketCommand requests another issuance attempt for an order whose
// previous attempt failed. Only orders present in the pending retry set may be
// retried.
type RetryTicketCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRetryTicketCommand creates a command to retry ticket issuance for the
// given order. Validates that the order ID is a constructed UUID.
func NewRetryTicketCommand(orderID kernel.UUID) (RetryTicketCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RetryTicketCommand{}, err
	}

	return RetryTicketCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrRetryTicketCommandIsNotConstructed if validation fails.
func (c RetryTicketCommand) Validate() error {
	return c.guard.Validate(ErrRetryTicketCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to retry.
func (c RetryTicketCommand) OrderID() kernel.UUID {
	return c.orderID
}
