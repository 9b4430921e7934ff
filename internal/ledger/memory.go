package ledger

import (
	"context"
	"sync"
)

type memoryLedger struct {
	mu       sync.RWMutex
	balances map[string]int64
}

// NewMemory creates a concurrency-safe in-memory ledger. It backs unit tests
// and the store-less development mode.
func NewMemory() Ledger {
	return &memoryLedger{balances: make(map[string]int64)}
}

func (l *memoryLedger) Balance(_ context.Context, user string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[user], nil
}

func (l *memoryLedger) Credit(_ context.Context, user string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[user] + amount
	l.balances[user] = balance
	return balance, nil
}

func (l *memoryLedger) Debit(_ context.Context, user string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[user]
	if balance < amount {
		return balance, ErrInsufficientFunds
	}

	balance -= amount
	l.balances[user] = balance
	return balance, nil
}
