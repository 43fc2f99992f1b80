package queries

import (
	"context"

	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/core/ports"
)

// GetPendingRetriesQueryHandler reads the pending retry set. The set is
// process-owned in-memory state, so unlike the persistence-backed queries this
// handler reads the store snapshot rather than the database.
type GetPendingRetriesQueryHandler struct {
	pending ports.PendingRetryStore
}

// NewGetPendingRetriesQueryHandler creates a handler for pending retry queries.
func NewGetPendingRetriesQueryHandler(pending ports.PendingRetryStore) GetPendingRetriesQueryHandler {
	return GetPendingRetriesQueryHandler{pending: pending}
}

// Handle returns a sorted snapshot of the order ids awaiting retry.
// The snapshot is a copy; callers cannot mutate the live set through it.
func (h GetPendingRetriesQueryHandler) Handle(
	_ context.Context,
	query GetPendingRetriesQuery,
) ([]kernel.UUID, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	return h.pending.Snapshot(), nil
}
