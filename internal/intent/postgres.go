package intent

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTracker persists pending intents in PostgreSQL. The unique
// constraint on code keeps matching codes unique among pending intents; the
// serial id column preserves insertion order for FindByText.
type PostgresTracker struct {
	db *pgxpool.Pool
}

// NewPostgresTracker constructs a Postgres-backed intent tracker.
func NewPostgresTracker(db *pgxpool.Pool) *PostgresTracker {
	return &PostgresTracker{db: db}
}

// Create stores a fresh intent, retrying code generation on the (unlikely)
// unique-constraint collision.
func (t *PostgresTracker) Create(ctx context.Context, user string, amount int64) (Intent, error) {
	const query = `
        INSERT INTO deposit_intents (code, user_id, amount, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (code) DO NOTHING`

	for {
		it := Intent{User: user, Amount: amount, Code: newCode(), CreatedAt: time.Now().UTC()}
		tag, err := t.db.Exec(ctx, query, it.Code, it.User, it.Amount, it.CreatedAt)
		if err != nil {
			return Intent{}, err
		}
		if tag.RowsAffected() == 1 {
			return it, nil
		}
	}
}

// FindByText returns the oldest pending intent whose code is a substring of text.
func (t *PostgresTracker) FindByText(ctx context.Context, text string) (Intent, error) {
	const query = `
        SELECT code, user_id, amount, created_at
        FROM deposit_intents
        WHERE position(code IN $1) > 0
        ORDER BY id
        LIMIT 1`

	var it Intent
	var createdAt time.Time
	if err := t.db.QueryRow(ctx, query, text).Scan(&it.Code, &it.User, &it.Amount, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Intent{}, ErrNotFound
		}
		return Intent{}, err
	}
	it.CreatedAt = createdAt.UTC()
	return it, nil
}

// Consume claims and removes the intent; a racing duplicate sees ErrNotFound.
func (t *PostgresTracker) Consume(ctx context.Context, code string) (Intent, error) {
	const query = `
        DELETE FROM deposit_intents
        WHERE code = $1
        RETURNING code, user_id, amount, created_at`

	var it Intent
	var createdAt time.Time
	if err := t.db.QueryRow(ctx, query, code).Scan(&it.Code, &it.User, &it.Amount, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Intent{}, ErrNotFound
		}
		return Intent{}, err
	}
	it.CreatedAt = createdAt.UTC()
	return it, nil
}

// ExpireOlderThan removes intents older than maxAge and reports the count.
func (t *PostgresTracker) ExpireOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	const query = `DELETE FROM deposit_intents WHERE created_at < $1`
	tag, err := t.db.Exec(ctx, query, time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
