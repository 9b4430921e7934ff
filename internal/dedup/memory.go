package dedup

import (
	"context"
	"sync"
)

type memoryRecorder struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewMemory creates a concurrency-safe in-memory processed-transaction set.
func NewMemory() Recorder {
	return &memoryRecorder{seen: make(map[string]struct{})}
}

func (r *memoryRecorder) Seen(_ context.Context, txID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[txID]
	return ok, nil
}

func (r *memoryRecorder) MarkOnce(_ context.Context, txID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[txID]; ok {
		return false, nil
	}
	r.seen[txID] = struct{}{}
	return true, nil
}
