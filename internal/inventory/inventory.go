package inventory

import (
	"context"
	"errors"
)

var (
	// ErrInvalidTier occurs when an operation names a tier outside the
	// configured tier set. AddKeys rejects without partial mutation.
	ErrInvalidTier = errors.New("unrecognized tier")

	// ErrEmpty occurs when TakeOne finds no key left for the tier.
	ErrEmpty = errors.New("tier inventory empty")
)

// Store owns one queue of unused key codes per tier. A key, once taken, is
// gone for good: it is never returned to the queue and never handed out
// twice, no matter how the callers interleave.
//
// Keys come out in the order they were added. FIFO is an implementation
// choice made for deterministic tests, not an upstream ordering guarantee.
type Store interface {
	Remaining(ctx context.Context, tier string) (int, error)
	TakeOne(ctx context.Context, tier string) (string, error)
	AddKeys(ctx context.Context, tier string, keys []string) error
}
