package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

const alertColumns = `id, type, address, severity, confidence, evidence, status, assignee, ack_at, resolved_at, created_at, fingerprint`

type AlertRepo struct {
	db *DB
}

func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// fingerprintLockKey maps a fingerprint onto the advisory lock keyspace.
func fingerprintLockKey(fingerprint string) int64 {
	h := fnv.New64a()
	h.Write([]byte(fingerprint))
	return int64(h.Sum64())
}

// InsertIfCooledDown serializes writers of the same fingerprint on a
// transaction-scoped advisory lock, then inserts only when no alert with that
// fingerprint was created after a.CreatedAt-cooldown.
func (r *AlertRepo) InsertIfCooledDown(ctx context.Context, a *model.Alert, cooldown time.Duration) (bool, error) {
	evidence, err := json.Marshal(a.Evidence)
	if err != nil {
		return false, fmt.Errorf("marshal evidence: %w", err)
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin alert insert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, fingerprintLockKey(a.Fingerprint)); err != nil {
		return false, fmt.Errorf("lock fingerprint %s: %w", a.Fingerprint, err)
	}

	var recent bool
	if err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM alerts
			WHERE fingerprint = $1 AND created_at > $2
		)
	`, a.Fingerprint, a.CreatedAt.Add(-cooldown)).Scan(&recent); err != nil {
		return false, fmt.Errorf("check fingerprint %s: %w", a.Fingerprint, err)
	}
	if recent {
		return false, nil
	}

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO alerts (type, address, severity, confidence, evidence, status, created_at, fingerprint)
		VALUES ($1, $2, $3, $4, $5, 'new', $6, $7)
		RETURNING id
	`, a.Type, a.Address, a.Severity, a.Confidence, evidence, a.CreatedAt, a.Fingerprint).Scan(&a.ID); err != nil {
		return false, fmt.Errorf("insert alert %s: %w", a.Fingerprint, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit alert %s: %w", a.Fingerprint, err)
	}
	a.Status = model.AlertStatusNew
	return true, nil
}

func (r *AlertRepo) ListRecent(ctx context.Context, limit int, status *model.AlertStatus) ([]model.Alert, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE ($2::TEXT IS NULL OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit, statusArg(status))
	if err != nil {
		return nil, fmt.Errorf("list recent alerts: %w", err)
	}
	return collectAlerts(rows)
}

func (r *AlertRepo) ListByAddress(ctx context.Context, address string, limit int, status *model.AlertStatus) ([]model.Alert, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE address = $1 AND ($3::TEXT IS NULL OR status = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, address, limit, statusArg(status))
	if err != nil {
		return nil, fmt.Errorf("list alerts for %s: %w", address, err)
	}
	return collectAlerts(rows)
}

// ListQueue orders by severity rank, then confidence, then recency.
func (r *AlertRepo) ListQueue(ctx context.Context, limit int, status model.AlertStatus) ([]model.Alert, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		WHERE status = $1
		ORDER BY
			CASE severity WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,
			confidence DESC,
			created_at DESC,
			id DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list alert queue: %w", err)
	}
	return collectAlerts(rows)
}

// UpdateStatus sets the status, replaces the assignee only when one is given,
// and stamps ack_at/resolved_at the first time that status is reached.
func (r *AlertRepo) UpdateStatus(ctx context.Context, id int64, status model.AlertStatus, assignee *string, at time.Time) (*model.Alert, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		UPDATE alerts SET
			status = $2::TEXT,
			assignee = COALESCE($3::TEXT, assignee),
			ack_at = CASE WHEN $2::TEXT = 'ack' THEN COALESCE(ack_at, $4) ELSE ack_at END,
			resolved_at = CASE WHEN $2::TEXT = 'resolved' THEN COALESCE(resolved_at, $4) ELSE resolved_at END
		WHERE id = $1
		RETURNING `+alertColumns, id, string(status), assignee, at)
	a, err := scanAlert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update alert %d: %w", id, err)
	}
	return a, nil
}

func (r *AlertRepo) CountByStatus(ctx context.Context) (map[model.AlertStatus]int64, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM alerts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	defer rows.Close()

	out := make(map[model.AlertStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan alert count: %w", err)
		}
		out[model.AlertStatus(status)] = n
	}
	return out, rows.Err()
}

func statusArg(status *model.AlertStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var (
		a                     model.Alert
		typ, severity, status string
		evidence              []byte
		assignee              sql.NullString
		ackAt, resolvedAt     sql.NullTime
	)
	if err := row.Scan(
		&a.ID, &typ, &a.Address, &severity, &a.Confidence, &evidence, &status,
		&assignee, &ackAt, &resolvedAt, &a.CreatedAt, &a.Fingerprint,
	); err != nil {
		return nil, err
	}
	a.Type = model.RuleType(typ)
	a.Severity = model.Severity(severity)
	a.Status = model.AlertStatus(status)
	if assignee.Valid {
		a.Assignee = &assignee.String
	}
	if ackAt.Valid {
		a.AckAt = &ackAt.Time
	}
	if resolvedAt.Valid {
		a.ResolvedAt = &resolvedAt.Time
	}
	a.Evidence = model.Evidence{}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &a.Evidence); err != nil {
			return nil, fmt.Errorf("decode evidence: %w", err)
		}
	}
	return &a, nil
}

func collectAlerts(rows *sql.Rows) ([]model.Alert, error) {
	defer rows.Close()
	out := make([]model.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
