package ports

import (
	"context"
	"errors"
	"time"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/core/domain/model/order"
)

// ErrOrderStatusConflict is returned by UpdateStatusFrom when the stored status
// no longer matches the expected one, meaning another process advanced the order
// concurrently. Callers treat this as losing the race, not as a system fault.
var ErrOrderStatusConflict = errors.New("order status changed concurrently")

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// UpdateStatusFrom persists the aggregate's state only if the stored status
	// still equals expected. Returns ErrOrderStatusConflict (and writes nothing)
	// otherwise. This is the atomic check-and-set that serializes concurrent
	// issuance attempts on the same order.
	UpdateStatusFrom(ctx context.Context, aggregate *order.Order, expected order.Status) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByNumber retrieves an order aggregate by its human-readable order number.
	GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error)

	// GetAllInStatusCreatedBefore retrieves all orders in the given status
	// created strictly before cutoff. Used by the payment timeout job.
	GetAllInStatusCreatedBefore(ctx context.Context, status order.Status, cutoff time.Time) ([]*order.Order, error)
}
