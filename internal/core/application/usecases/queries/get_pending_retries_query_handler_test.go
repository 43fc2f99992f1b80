package queries_test

import (
	"sync"
	"testing"

	"ticketing/internal/core/application/usecases/queries"
	"ticketing/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPendingStore is a minimal pending set for query tests.
type stubPendingStore struct {
	mu  sync.Mutex
	ids []kernel.UUID
}

func (s *stubPendingStore) Add(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, orderID)
}

func (s *stubPendingStore) Remove(kernel.UUID) {}

func (s *stubPendingStore) Contains(orderID kernel.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.ids {
		if id.IsEqual(orderID) {
			return true
		}
	}
	return false
}

func (s *stubPendingStore) Snapshot() []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]kernel.UUID, len(s.ids))
	copy(out, s.ids)
	return out
}

func TestGetPendingRetriesQueryHandler_Handle_Empty(t *testing.T) {
	ctx := t.Context()
	h := queries.NewGetPendingRetriesQueryHandler(&stubPendingStore{})

	ids, err := h.Handle(ctx, queries.NewGetPendingRetriesQuery())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGetPendingRetriesQueryHandler_Handle_ReturnsSnapshot(t *testing.T) {
	ctx := t.Context()
	store := &stubPendingStore{}
	first := kernel.NewUUID()
	second := kernel.NewUUID()
	store.Add(first)
	store.Add(second)

	h := queries.NewGetPendingRetriesQueryHandler(store)

	ids, err := h.Handle(ctx, queries.NewGetPendingRetriesQuery())
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.True(t, ids[0].IsEqual(first))
	assert.True(t, ids[1].IsEqual(second))
}

func TestGetPendingRetriesQueryHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	h := queries.NewGetPendingRetriesQueryHandler(&stubPendingStore{})

	_, err := h.Handle(ctx, queries.GetPendingRetriesQuery{})
	require.Error(t, err)
}
