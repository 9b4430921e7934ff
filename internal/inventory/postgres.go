package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists tier key queues in PostgreSQL. The serial id column
// preserves insertion order; DELETE ... SKIP LOCKED makes TakeOne safe under
// concurrent purchases.
type PostgresStore struct {
	db    *pgxpool.Pool
	tiers map[string]struct{}
}

// NewPostgresStore constructs a Postgres-backed key store for the given tier set.
func NewPostgresStore(db *pgxpool.Pool, tiers []string) *PostgresStore {
	set := make(map[string]struct{}, len(tiers))
	for _, tier := range tiers {
		set[tier] = struct{}{}
	}
	return &PostgresStore{db: db, tiers: set}
}

// Remaining counts the unused keys left for the tier.
func (s *PostgresStore) Remaining(ctx context.Context, tier string) (int, error) {
	if _, ok := s.tiers[tier]; !ok {
		return 0, ErrInvalidTier
	}

	const query = `SELECT COUNT(*) FROM inventory_keys WHERE tier = $1`
	var count int
	if err := s.db.QueryRow(ctx, query, tier).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// TakeOne pops the oldest key for the tier, or reports ErrEmpty.
func (s *PostgresStore) TakeOne(ctx context.Context, tier string) (string, error) {
	if _, ok := s.tiers[tier]; !ok {
		return "", ErrInvalidTier
	}

	const query = `
        DELETE FROM inventory_keys
        WHERE id = (
            SELECT id FROM inventory_keys
            WHERE tier = $1
            ORDER BY id
            LIMIT 1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING code`
	var code string
	if err := s.db.QueryRow(ctx, query, tier).Scan(&code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrEmpty
		}
		return "", err
	}
	return code, nil
}

// AddKeys appends keys to the back of the tier's queue in the given order,
// all or nothing.
func (s *PostgresStore) AddKeys(ctx context.Context, tier string, keys []string) error {
	if _, ok := s.tiers[tier]; !ok {
		return ErrInvalidTier
	}
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, key := range keys {
		if _, err := tx.Exec(ctx, `INSERT INTO inventory_keys (tier, code) VALUES ($1, $2)`, tier, key); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
