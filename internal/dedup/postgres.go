package dedup

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder persists the processed-transaction set in PostgreSQL.
// MarkOnce leans on the primary key: the insert that sticks wins.
type PostgresRecorder struct {
	db *pgxpool.Pool
}

// NewPostgresRecorder constructs a Postgres-backed recorder.
func NewPostgresRecorder(db *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Seen reports whether the identifier was already recorded.
func (r *PostgresRecorder) Seen(ctx context.Context, txID string) (bool, error) {
	const query = `SELECT 1 FROM processed_transactions WHERE tx_id = $1`
	var one int
	if err := r.db.QueryRow(ctx, query, txID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MarkOnce records the identifier; only the first insert reports true.
func (r *PostgresRecorder) MarkOnce(ctx context.Context, txID string) (bool, error) {
	const query = `
        INSERT INTO processed_transactions (tx_id, processed_at)
        VALUES ($1, now())
        ON CONFLICT (tx_id) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, txID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
