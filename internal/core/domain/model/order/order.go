package order

import (
	"errors"
	"time"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrTicketNumberIsRequired is returned when completing ticketing without a
	// ticket number.
	ErrTicketNumberIsRequired = errors.New("ticket number is required to complete ticketing")
)

// Order is the aggregate root of the ticketing workflow. It tracks a purchase
// from creation through payment and ticket issuance (or cancellation).
//
// Order maintains these invariants:
//   - id, orderNumber and userID are set once at construction and never change
//   - status only changes along edges of the Status transition table
//   - every status mutation refreshes updatedAt; createdAt is immutable
//   - ticketNumber is set exactly once, on the transition to Ticketed
//   - price is non-negative with a fixed two-decimal scale
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// orderNumber is the human-readable identifier exposed to clients,
	// unique and immutable after creation
	orderNumber string

	// userID references the owning user
	userID kernel.UUID

	// flightID optionally references the associated flight record
	flightID *kernel.UUID

	// price is the order amount
	price kernel.Money

	// status is the current state in the ticketing workflow
	status Status

	// ticketNumber is the airline ticket number, set when the order reaches Ticketed
	ticketNumber string

	createdAt time.Time
	updatedAt time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates an Order in PendingPayment status. createdAt and updatedAt
// are both set to now; now is injected so callers control the time source.
func NewOrder(id kernel.UUID, orderNumber string, userID kernel.UUID, price kernel.Money, now time.Time) (*Order, error) {
	order := &Order{
		status:        PendingPayment,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setOrderNumber(orderNumber),
		order.setUserID(userID),
		order.setPrice(price),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder reconstructs an Order from persisted state. All fields are
// validated; the status must be one of the defined states and a Ticketed order
// must carry a ticket number.
func RestoreOrder(
	id kernel.UUID,
	orderNumber string,
	userID kernel.UUID,
	flightID *kernel.UUID,
	price kernel.Money,
	status Status,
	ticketNumber string,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	order := &Order{
		flightID:      flightID,
		ticketNumber:  ticketNumber,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setOrderNumber(orderNumber),
		order.setUserID(userID),
		order.setPrice(price),
		order.setStatus(status),
	); err != nil {
		return nil, err
	}

	if flightID != nil {
		if err := flightID.Validate(); err != nil {
			return nil, err
		}
	}

	if status == Ticketed && ticketNumber == "" {
		return nil, ErrTicketNumberIsRequired
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// OrderNumber returns the human-readable order number.
func (o *Order) OrderNumber() string {
	return o.orderNumber
}

// UserID returns the identifier of the owning user.
func (o *Order) UserID() kernel.UUID {
	return o.userID
}

// FlightID returns the associated flight reference, or nil when none is attached.
func (o *Order) FlightID() *kernel.UUID {
	return o.flightID
}

// Price returns the order amount.
func (o *Order) Price() kernel.Money {
	return o.price
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// TicketNumber returns the issued ticket number, or "" while not ticketed.
func (o *Order) TicketNumber() string {
	return o.ticketNumber
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the timestamp of the last status mutation.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// AttachFlight associates the order with a flight record.
func (o *Order) AttachFlight(flightID kernel.UUID) error {
	if err := flightID.Validate(); err != nil {
		return err
	}

	o.flightID = &flightID
	return nil
}

// MarkPaid records a received payment, moving the order from PendingPayment to Paid.
func (o *Order) MarkPaid(now time.Time) error {
	return o.transitionTo(Paid, now)
}

// StartTicketing moves the order into TicketingInProgress before an issuance
// attempt. Legal from Paid and from TicketingFailed (retry re-enters in progress).
func (o *Order) StartTicketing(now time.Time) error {
	return o.transitionTo(TicketingInProgress, now)
}

// CompleteTicketing records the issued ticket number and moves the order to
// Ticketed. The ticket number must be non-empty.
func (o *Order) CompleteTicketing(ticketNumber string, now time.Time) error {
	if ticketNumber == "" {
		return ErrTicketNumberIsRequired
	}

	if err := o.transitionTo(Ticketed, now); err != nil {
		return err
	}

	o.ticketNumber = ticketNumber
	return nil
}

// FailTicketing records a failed issuance attempt, moving the order to
// TicketingFailed so it can be retried or cancelled.
func (o *Order) FailTicketing(now time.Time) error {
	return o.transitionTo(TicketingFailed, now)
}

// Cancel moves the order to Cancelled. Legal from PendingPayment (payment
// window expired) and from TicketingFailed (issuance given up).
func (o *Order) Cancel(now time.Time) error {
	return o.transitionTo(Cancelled, now)
}

// transitionTo applies a status change through the transition table and
// refreshes updatedAt. Illegal transitions leave the order unmodified.
func (o *Order) transitionTo(next Status, now time.Time) error {
	newStatus, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.updatedAt = now
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return errs.NewValueIsRequiredError("orderNumber")
	}
	o.orderNumber = orderNumber
	return nil
}

func (o *Order) setUserID(userID kernel.UUID) error {
	if err := userID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("userID", err)
	}
	o.userID = userID
	return nil
}

func (o *Order) setPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return err
	}
	o.price = price
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
