package ports

import (
	"ticketing/internal/core/domain/model/kernel"
)

// PendingRetryStore is a thread-safe set of order identifiers whose last
// issuance attempt failed and that await another attempt.
//
// All methods are safe for concurrent callers. Add of an already-present id is
// idempotent; Remove of an absent id is a no-op.
type PendingRetryStore interface {
	// Add inserts the order id into the pending set.
	Add(orderID kernel.UUID)

	// Remove deletes the order id from the pending set.
	Remove(orderID kernel.UUID)

	// Contains reports whether the order id is in the pending set.
	Contains(orderID kernel.UUID) bool

	// Snapshot returns a consistent point-in-time copy of the pending set,
	// sorted by id. Mutating the returned slice does not affect the store.
	Snapshot() []kernel.UUID
}
