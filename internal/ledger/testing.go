package ledger

// SeedBalance is a test helper that seeds the balance for a user when using the in-memory ledger.
func SeedBalance(l Ledger, user string, amount int64) {
	if mem, ok := l.(*memoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[user] = amount
	}
}
