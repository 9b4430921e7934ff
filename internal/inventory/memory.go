package inventory

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu     sync.RWMutex
	queues map[string][]string
}

// NewMemory creates a concurrency-safe in-memory key store for the given
// tier set. Tiers outside the set are rejected, never created on the fly.
func NewMemory(tiers []string) Store {
	queues := make(map[string][]string, len(tiers))
	for _, tier := range tiers {
		queues[tier] = nil
	}
	return &memoryStore{queues: queues}
}

func (s *memoryStore) Remaining(_ context.Context, tier string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queue, ok := s.queues[tier]
	if !ok {
		return 0, ErrInvalidTier
	}
	return len(queue), nil
}

func (s *memoryStore) TakeOne(_ context.Context, tier string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, ok := s.queues[tier]
	if !ok {
		return "", ErrInvalidTier
	}
	if len(queue) == 0 {
		return "", ErrEmpty
	}

	key := queue[0]
	s.queues[tier] = queue[1:]
	return key, nil
}

func (s *memoryStore) AddKeys(_ context.Context, tier string, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue, ok := s.queues[tier]
	if !ok {
		return ErrInvalidTier
	}
	s.queues[tier] = append(queue, keys...)
	return nil
}
