// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"

	"ticketing/internal/pkg/guard"
)

var ErrGetPendingRetriesQueryIsNotConstructed = errors.New(
	"GetPendingRetriesQuery must be created via NewGetPendingRetriesQuery constructor",
)

// GetPendingRetriesQuery retrieves the identifiers of all orders whose last
// issuance attempt failed and that await a retry.
//
// Example:
//
//	query := NewGetPendingRetriesQuery()
//	handler := NewGetPendingRetriesQueryHandler(pendingStore)
//	pending, err := handler.Handle(ctx, query)
type GetPendingRetriesQuery struct {
	guard guard.ConstructorGuard
}

// NewGetPendingRetriesQuery creates a query for the pending retry set.
// This is a parameterless query.
func NewGetPendingRetriesQuery() GetPendingRetriesQuery {
	return GetPendingRetriesQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetPendingRetriesQueryIsNotConstructed if validation fails.
func (q GetPendingRetriesQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingRetriesQueryIsNotConstructed)
}
