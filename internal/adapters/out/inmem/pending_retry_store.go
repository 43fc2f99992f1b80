// Package inmem provides process-local adapter implementations.
// The pending retry set lives here: it is explicitly owned state constructed
// once at process start and passed by reference to its consumers, not ambient
// static state.
package inmem

import (
	"sort"
	"sync"

	"ticketing/internal/core/domain/model/kernel"
)

// PendingRetryStore is a mutex-guarded set of order identifiers awaiting a
// ticket issuance retry. Safe for many concurrent readers and writers;
// Snapshot always observes a consistent point-in-time view.
type PendingRetryStore struct {
	mu  sync.Mutex
	ids map[kernel.UUID]struct{}
}

// NewPendingRetryStore creates an empty pending retry store.
func NewPendingRetryStore() *PendingRetryStore {
	return &PendingRetryStore{
		ids: make(map[kernel.UUID]struct{}),
	}
}

// Add inserts the order id. Adding an already-present id is a no-op.
func (s *PendingRetryStore) Add(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids[orderID] = struct{}{}
}

// Remove deletes the order id. Removing an absent id is a no-op.
func (s *PendingRetryStore) Remove(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ids, orderID)
}

// Contains reports whether the order id is in the set.
func (s *PendingRetryStore) Contains(orderID kernel.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[orderID]
	return ok
}

// Snapshot returns a copy of the set sorted by id string. The copy does not
// alias internal state.
func (s *PendingRetryStore) Snapshot() []kernel.UUID {
	s.mu.Lock()
	snapshot := make([]kernel.UUID, 0, len(s.ids))
	for id := range s.ids {
		snapshot = append(snapshot, id)
	}
	s.mu.Unlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].String() < snapshot[j].String()
	})
	return snapshot
}
