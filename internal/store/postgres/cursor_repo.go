package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

const createIngestStateSQL = `
	CREATE TABLE IF NOT EXISTS ingest_state (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// CursorRepo stores stream pointers and diagnostics in ingest_state. The
// table is created on first use so the worker can start against an empty
// database.
type CursorRepo struct {
	db *DB

	mu     sync.Mutex
	schema bool
}

func NewCursorRepo(db *DB) *CursorRepo {
	return &CursorRepo{db: db}
}

func (r *CursorRepo) ensureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schema {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, createIngestStateSQL); err != nil {
		return fmt.Errorf("ensure ingest_state: %w", err)
	}
	r.schema = true
	return nil
}

func (r *CursorRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return "", false, err
	}
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM ingest_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get state %s: %w", key, err)
	}
	return value, true, nil
}

// GetBlock reads a stream pointer as a block number.
func (r *CursorRepo) GetBlock(ctx context.Context, key string) (int64, bool, error) {
	value, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	block, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cursor %s=%q: %w", key, value, err)
	}
	return block, true, nil
}

func (r *CursorRepo) Set(ctx context.Context, key, value string) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingest_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
	`, key, value)
	if err != nil {
		return fmt.Errorf("set state %s: %w", key, err)
	}
	return nil
}

// AdvanceTx moves a stream pointer to block inside tx. A stored value that
// is already at or beyond block is left untouched.
func (r *CursorRepo) AdvanceTx(ctx context.Context, tx *sql.Tx, key string, block int64) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ingest_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
		WHERE ingest_state.value::BIGINT < EXCLUDED.value::BIGINT
	`, key, strconv.FormatInt(block, 10))
	if err != nil {
		return fmt.Errorf("advance cursor %s to %d: %w", key, block, err)
	}
	return nil
}

func (r *CursorRepo) All(ctx context.Context) ([]model.IngestState, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM ingest_state ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list state: %w", err)
	}
	defer rows.Close()

	var out []model.IngestState
	for rows.Next() {
		var s model.IngestState
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
