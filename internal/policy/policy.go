// Package policy holds the fixed numeric rules bounding legal charge/use
// amounts and account balances. All checks are pure: no I/O, no state.
package policy

import (
	"errors"
	"fmt"
)

const (
	// MinCharge is the smallest chargeable amount per request, inclusive.
	MinCharge = int64(1)
	// MaxCharge is the largest chargeable amount per request, inclusive.
	MaxCharge = int64(1_000_000)
	// MaxBalance is the ceiling an account may ever hold.
	MaxBalance = int64(1_000_000)
	// MinUse is the smallest usable amount, inclusive. Using 0 is a legal
	// no-op that is still recorded.
	MinUse = int64(0)
)

var (
	ErrInvalidAmount          = errors.New("amount below the operation minimum")
	ErrChargeLimitExceeded    = errors.New("single charge limit exceeded")
	ErrBalanceCeilingExceeded = errors.New("maximum balance exceeded")
	ErrInsufficientBalance    = errors.New("insufficient balance")
)

// ValidateCharge checks a charge of amount against the balance read under
// the account's lock. It never mutates anything.
func ValidateCharge(currentBalance, amount int64) error {
	if amount < MinCharge {
		return fmt.Errorf("%w: charges must be at least %d", ErrInvalidAmount, MinCharge)
	}
	if amount > MaxCharge {
		return fmt.Errorf("%w: at most %d per charge", ErrChargeLimitExceeded, MaxCharge)
	}
	if currentBalance+amount > MaxBalance {
		return fmt.Errorf("%w: balance may not exceed %d", ErrBalanceCeilingExceeded, MaxBalance)
	}
	return nil
}

// ValidateUse checks a use of amount against the balance read under the
// account's lock.
func ValidateUse(currentBalance, amount int64) error {
	if amount < MinUse {
		return fmt.Errorf("%w: uses must be at least %d", ErrInvalidAmount, MinUse)
	}
	if amount > currentBalance {
		return fmt.Errorf("%w: have %d, requested %d", ErrInsufficientBalance, currentBalance, amount)
	}
	return nil
}
