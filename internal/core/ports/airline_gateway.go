package ports

import (
	"context"
	"errors"
	"fmt"

	"ticketing/internal/core/domain/model/kernel"
)

// ErrAirlineAPI is the unwrap target for AirlineAPIError. It marks business-level
// failures of the airline service (e.g. no seats left): expected, recoverable
// outcomes that drive the retry-queue path, as opposed to transport faults.
var ErrAirlineAPI = errors.New("airline api error")

// AirlineGateway issues tickets against the (simulated) external airline service.
//
// IssueTicket blocks for the duration of the simulated processing delay and must
// honor ctx cancellation: when the caller's context is cancelled mid-delay the
// call returns promptly with ctx.Err() instead of completing.
type AirlineGateway interface {
	// IssueTicket requests a ticket for the given order. Returns the issued
	// ticket number (unique per call) or an AirlineAPIError on business failure.
	IssueTicket(ctx context.Context, orderID kernel.UUID) (string, error)
}

// AirlineAPIError reports a business-level refusal from the airline service.
// Unwraps to ErrAirlineAPI; never silently swallowed by callers.
type AirlineAPIError struct {
	OrderID kernel.UUID
	Message string
}

func (e *AirlineAPIError) Error() string {
	return fmt.Sprintf("%s: order %s: %s", ErrAirlineAPI, e.OrderID, e.Message)
}

func (e *AirlineAPIError) Unwrap() error {
	return ErrAirlineAPI
}
