package intent

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryTracker struct {
	mu      sync.Mutex
	ordered []string // codes in insertion order, for deterministic matching
	pending map[string]Intent
}

// NewMemory creates a concurrency-safe in-memory intent tracker.
func NewMemory() Tracker {
	return &memoryTracker{pending: make(map[string]Intent)}
}

func (t *memoryTracker) Create(_ context.Context, user string, amount int64) (Intent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	code := newCode()
	for {
		if _, taken := t.pending[code]; !taken {
			break
		}
		code = newCode()
	}

	it := Intent{User: user, Amount: amount, Code: code, CreatedAt: time.Now().UTC()}
	t.pending[code] = it
	t.ordered = append(t.ordered, code)
	return it, nil
}

func (t *memoryTracker) FindByText(_ context.Context, text string) (Intent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// First code discovered in insertion order wins; short codes embedded in
	// another memo are a known ambiguity of substring matching.
	for _, code := range t.ordered {
		it, ok := t.pending[code]
		if !ok {
			continue
		}
		if strings.Contains(text, code) {
			return it, nil
		}
	}
	return Intent{}, ErrNotFound
}

func (t *memoryTracker) Consume(_ context.Context, code string) (Intent, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	it, ok := t.pending[code]
	if !ok {
		return Intent{}, ErrNotFound
	}
	delete(t.pending, code)
	return it, nil
}

func (t *memoryTracker) ExpireOlderThan(_ context.Context, maxAge time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	kept := t.ordered[:0]
	for _, code := range t.ordered {
		it, ok := t.pending[code]
		if !ok {
			continue // consumed; drop from the order slice too
		}
		if it.CreatedAt.Before(cutoff) {
			delete(t.pending, code)
			removed++
			continue
		}
		kept = append(kept, code)
	}
	t.ordered = kept
	return removed, nil
}
