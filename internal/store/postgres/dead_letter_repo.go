package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

const deadLetterColumns = `id, stage, start_block, end_block, error, retry_count, status, created_at, updated_at`

type DeadLetterRepo struct {
	db *DB
}

func NewDeadLetterRepo(db *DB) *DeadLetterRepo {
	return &DeadLetterRepo{db: db}
}

func (r *DeadLetterRepo) CreateTx(ctx context.Context, tx *sql.Tx, dl *model.DeadLetter) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
		INSERT INTO ingest_dead_letters (stage, start_block, end_block, error)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, dl.Stage, dl.StartBlock, dl.EndBlock, dl.Error).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create dead letter [%d,%d]: %w", dl.StartBlock, dl.EndBlock, err)
	}
	dl.ID = id
	dl.Status = model.DeadLetterOpen
	return id, nil
}

func (r *DeadLetterRepo) Get(ctx context.Context, id int64) (*model.DeadLetter, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `SELECT `+deadLetterColumns+` FROM ingest_dead_letters WHERE id = $1`, id)
	dl, err := scanDeadLetter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dead letter %d: %w", id, err)
	}
	return dl, nil
}

// ListOpen returns the oldest open entries first.
func (r *DeadLetterRepo) ListOpen(ctx context.Context, limit int) ([]model.DeadLetter, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+deadLetterColumns+`
		FROM ingest_dead_letters
		WHERE status = 'open'
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list open dead letters: %w", err)
	}
	return collectDeadLetters(rows)
}

// List returns the newest entries first, optionally filtered by status.
func (r *DeadLetterRepo) List(ctx context.Context, limit int, status *model.DeadLetterStatus) ([]model.DeadLetter, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var filter *string
	if status != nil {
		s := string(*status)
		filter = &s
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+deadLetterColumns+`
		FROM ingest_dead_letters
		WHERE ($2::TEXT IS NULL OR status = $2)
		ORDER BY id DESC
		LIMIT $1
	`, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	return collectDeadLetters(rows)
}

func (r *DeadLetterRepo) MarkResolvedTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE ingest_dead_letters
		SET status = 'resolved', updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("resolve dead letter %d: %w", id, err)
	}
	return requireOneRow(res, "resolve dead letter", id)
}

func (r *DeadLetterRepo) RecordFailureTx(ctx context.Context, tx *sql.Tx, id int64, errMsg string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE ingest_dead_letters
		SET retry_count = retry_count + 1, error = $2, updated_at = now()
		WHERE id = $1
	`, id, errMsg)
	if err != nil {
		return fmt.Errorf("record dead letter failure %d: %w", id, err)
	}
	return requireOneRow(res, "record dead letter failure", id)
}

func (r *DeadLetterRepo) CountByStatus(ctx context.Context) (map[model.DeadLetterStatus]int64, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM ingest_dead_letters GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count dead letters: %w", err)
	}
	defer rows.Close()

	out := make(map[model.DeadLetterStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan dead letter count: %w", err)
		}
		out[model.DeadLetterStatus(status)] = n
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeadLetter(row rowScanner) (*model.DeadLetter, error) {
	var dl model.DeadLetter
	var status string
	if err := row.Scan(
		&dl.ID, &dl.Stage, &dl.StartBlock, &dl.EndBlock, &dl.Error,
		&dl.RetryCount, &status, &dl.CreatedAt, &dl.UpdatedAt,
	); err != nil {
		return nil, err
	}
	dl.Status = model.DeadLetterStatus(status)
	return &dl, nil
}

func collectDeadLetters(rows *sql.Rows) ([]model.DeadLetter, error) {
	defer rows.Close()
	var out []model.DeadLetter
	for rows.Next() {
		dl, err := scanDeadLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		out = append(out, *dl)
	}
	return out, rows.Err()
}

func requireOneRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, sql.ErrNoRows)
	}
	return nil
}
