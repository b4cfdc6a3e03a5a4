package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

const dbTimeout = 5 * time.Second

// PostgresStore keeps banks in the question_banks and question_bank_rows
// tables. Each row is stored as a jsonb object of header to cell text.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed bank store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]quiz.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM question_banks WHERE bank_key = $1)`,
		key,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup bank %s: %w", key, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT data FROM question_bank_rows
		 WHERE bank_key = $1
		 ORDER BY position ASC`,
		key,
	)
	if err != nil {
		return nil, fmt.Errorf("query bank %s: %w", key, err)
	}

	raw, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan bank %s: %w", key, err)
	}

	records := make([]quiz.RawRecord, 0, len(raw))
	for i, data := range raw {
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode bank %s row %d: %w", key, i, err)
		}
		records = append(records, recordFromMap(m))
	}
	return records, nil
}

// Put replaces the contents of a bank.
func (s *PostgresStore) Put(ctx context.Context, key string, records []quiz.RawRecord) error {
	if !validKey(key) {
		return fmt.Errorf("invalid bank key %q", key)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO question_banks (bank_key, updated_at) VALUES ($1, NOW())
		 ON CONFLICT (bank_key) DO UPDATE SET updated_at = EXCLUDED.updated_at`,
		key,
	); err != nil {
		return fmt.Errorf("upsert bank %s: %w", key, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM question_bank_rows WHERE bank_key = $1`, key); err != nil {
		return fmt.Errorf("clear bank %s: %w", key, err)
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		batch.Queue(
			`INSERT INTO question_bank_rows (bank_key, position, data) VALUES ($1, $2, $3::jsonb)`,
			key, i, string(data),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert rows for %s: %w", key, err)
	}

	return tx.Commit(ctx)
}
