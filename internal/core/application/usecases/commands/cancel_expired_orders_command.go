package commands

import (
	"errors"

	"ticketing/internal/pkg/guard"
)

var ErrCancelExpiredOrdersCommandIsNotConstructed = errors.New(
	"CancelExpiredOrdersCommand must be created via NewCancelExpiredOrdersCommand constructor",
)

// CancelExpiredOrdersCommand triggers one sweep over orders stuck in
// PendingPayment past the payment grace period, cancelling each of them.
// Issued on a schedule by the payment timeout job.
type CancelExpiredOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewCancelExpiredOrdersCommand creates a command to trigger a timeout sweep.
// This is a parameterless command; the cutoff is computed by the handler from
// its injected clock and configured grace period.
func NewCancelExpiredOrdersCommand() CancelExpiredOrdersCommand {
	return CancelExpiredOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrCancelExpiredOrdersCommandIsNotConstructed if validation fails.
func (c CancelExpiredOrdersCommand) Validate() error {
	return c.guard.Validate(ErrCancelExpiredOrdersCommandIsNotConstructed)
}
