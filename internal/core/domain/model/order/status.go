package order

import (
	"errors"
	"fmt"

	"ticketing/internal/pkg/errs"
)

// ErrInvalidTransition is the unwrap target for InvalidTransitionError.
// Requested state changes that violate the transition table are always rejected,
// never partially applied.
var ErrInvalidTransition = errors.New("invalid status transition")

// Status represents the lifecycle state of an order. It implements a state
// machine whose legal edges form a DAG:
//
//	PendingPayment ──┬──> Paid ──> TicketingInProgress ──┬──> Ticketed
//	                 │                    ^              │
//	                 │                    │              └──> TicketingFailed
//	                 │                    └──────────────────────┘ (retry)
//	                 └──> Cancelled <── TicketingFailed
//
// Ticketed and Cancelled are terminal. Legality of a transition is decided by a
// single table lookup; no edge outside the table is ever permitted.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// PendingPayment is the initial status of a freshly created order.
	// Orders stuck here past the payment grace period are cancelled by the
	// timeout job.
	PendingPayment

	// Paid indicates payment has been received; the order is eligible for
	// ticket issuance.
	Paid

	// TicketingInProgress indicates an issuance attempt is in flight against
	// the airline service. Entering this status is the serialization point:
	// a second concurrent attempt observes it and is rejected.
	TicketingInProgress

	// Ticketed indicates a ticket number was issued. Terminal.
	Ticketed

	// TicketingFailed indicates the last issuance attempt failed; the order
	// awaits a retry or cancellation.
	TicketingFailed

	// Cancelled indicates the order was cancelled. Terminal.
	Cancelled
)

// transitions is the complete edge table of the order state machine.
// Terminal states have no outgoing edges.
var transitions = map[Status][]Status{
	PendingPayment:      {Paid, Cancelled},
	Paid:                {TicketingInProgress},
	TicketingInProgress: {Ticketed, TicketingFailed},
	TicketingFailed:     {TicketingInProgress, Cancelled},
	Ticketed:            {},
	Cancelled:           {},
}

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:             "Unknown",
		PendingPayment:      "PendingPayment",
		Paid:                "Paid",
		TicketingInProgress: "TicketingInProgress",
		Ticketed:            "Ticketed",
		TicketingFailed:     "TicketingFailed",
		Cancelled:           "Cancelled",
	}
}

// Validate checks that the Status value is one of the defined states.
// Unknown (0) and out-of-range values are invalid. Used when reconstructing
// orders from persistence or parsing external input.
func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status, or "Unknown" for
// invalid values. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	edges, ok := transitions[s]
	return ok && len(edges) == 0
}

// CanTransitionTo reports whether the edge (s, next) is in the transition table.
// Pure function, no side effects.
func (s Status) CanTransitionTo(next Status) bool {
	for _, edge := range transitions[s] {
		if edge == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next if the edge (s, next) is legal, otherwise an
// InvalidTransitionError. Illegal transitions are never clamped or ignored.
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return 0, &InvalidTransitionError{From: s, To: next}
	}
	return next, nil
}

// InvalidTransitionError reports a requested state change that violates the
// state machine graph. Unwraps to ErrInvalidTransition.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
