// Package kernel provides core domain primitives used throughout the ticketing
// domain model.
//
// The package includes:
//   - UUID: a value object for unique identifiers with validation and comparison
//   - Money: a non-negative monetary amount with a fixed two-decimal scale
//
// These primitives enforce domain invariants at construction time, are immutable
// and are safe for concurrent use.
package kernel
