package dedup

import "context"

// Recorder is the processed-transaction set behind the webhook dedup gate.
// An identifier, once recorded, stays recorded for the life of the store;
// the set grows monotonically and is never pruned.
type Recorder interface {
	// Seen reports whether the identifier was already recorded.
	Seen(ctx context.Context, txID string) (bool, error)

	// MarkOnce records the identifier. The first caller gets true; every
	// caller after that gets false.
	MarkOnce(ctx context.Context, txID string) (bool, error)
}
