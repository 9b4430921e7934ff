package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists balances in PostgreSQL. Atomicity of the
// check-and-subtract comes from the conditional UPDATE hitting a single row.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Balance returns the stored balance, defaulting to zero for unknown users.
func (l *PostgresLedger) Balance(ctx context.Context, user string) (int64, error) {
	const query = `SELECT balance FROM balances WHERE user_id = $1`
	var balance int64
	if err := l.db.QueryRow(ctx, query, user).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// Credit adds amount to the user's balance, creating the row on first use.
func (l *PostgresLedger) Credit(ctx context.Context, user string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	const query = `
        INSERT INTO balances (user_id, balance) VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE SET balance = balances.balance + EXCLUDED.balance
        RETURNING balance`
	var balance int64
	if err := l.db.QueryRow(ctx, query, user, amount).Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Debit subtracts amount if and only if the balance covers it.
func (l *PostgresLedger) Debit(ctx context.Context, user string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	const query = `
        UPDATE balances SET balance = balance - $2
        WHERE user_id = $1 AND balance >= $2
        RETURNING balance`
	var balance int64
	err := l.db.QueryRow(ctx, query, user, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	// No row updated: either the user is unknown or the balance is short.
	current, err := l.Balance(ctx, user)
	if err != nil {
		return 0, err
	}
	return current, ErrInsufficientFunds
}
