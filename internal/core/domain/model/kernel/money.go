package kernel

import (
	"fmt"

	"ticketing/internal/pkg/errs"
)

// Money is a value object representing a monetary amount with a fixed scale of
// two decimal digits. The amount is stored as an integer number of cents so that
// arithmetic and comparison never suffer floating-point drift.
//
// Money may never be negative. The zero value is a valid amount of 0.00.
type Money struct {
	cents int64
}

// MoneyFromCents creates a Money from an integer number of cents.
// Returns an error for negative amounts.
func MoneyFromCents(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d cents is negative", cents))
	}
	return Money{cents: cents}, nil
}

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 {
	return m.cents
}

// String renders the amount with two decimal digits, e.g. "149.90".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}

// IsEqual reports whether both amounts are the same.
func (m Money) IsEqual(other Money) bool {
	return m.cents == other.cents
}

// Validate reports whether the amount satisfies the non-negativity invariant.
func (m Money) Validate() error {
	if m.cents < 0 {
		return errs.NewValueIsInvalidError("amount")
	}
	return nil
}
