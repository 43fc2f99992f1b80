// Package order provides the domain model for the airline ticketing workflow.
// It implements the Order aggregate root with lifecycle management and validated
// state transitions.
//
// The package includes:
//   - Order: the aggregate root managing identity, price and ticketing lifecycle
//   - Status: a state machine enforcing the legal order status transitions
//
// Key business rules:
//   - Orders start in PendingPayment and end in Ticketed or Cancelled
//   - Ticket issuance only starts from Paid or TicketingFailed
//   - Entering TicketingInProgress serializes concurrent issuance attempts
//   - Unpaid orders may be cancelled; ticketed orders may not
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
