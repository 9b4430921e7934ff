package ledger

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAmount occurs when a credit or debit is requested with a
	// non-positive amount. Amounts are never clamped.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Ledger holds one integer balance per user, in the smallest currency unit.
// Unknown users have balance zero; an account materializes on first credit.
//
// Debit is the check-and-subtract primitive: it must be atomic with respect
// to every other Credit/Debit on the same user, so two concurrent purchases
// can never both clear a balance that only covers one.
type Ledger interface {
	Balance(ctx context.Context, user string) (int64, error)
	Credit(ctx context.Context, user string, amount int64) (int64, error)
	Debit(ctx context.Context, user string, amount int64) (int64, error)
}
