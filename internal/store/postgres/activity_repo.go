package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/lib/pq"
)

// ActivityRepo runs the windowed aggregates behind the alert rules. All
// windows are half-open and evaluated over transactions.timestamp.
type ActivityRepo struct {
	db *DB
}

func NewActivityRepo(db *DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

var directionColumn = map[model.Direction]string{
	model.DirectionOutbound: "from_address",
	model.DirectionInbound:  "to_address",
}

// DirectionalCounts returns addresses with at least minNow interactions in the
// current window, with their previous-window counts, largest growth first.
func (r *ActivityRepo) DirectionalCounts(ctx context.Context, dir model.Direction, span model.WindowSpan, minNow int64, limit int) ([]model.WindowCount, error) {
	col, ok := directionColumn[dir]
	if !ok {
		return nil, fmt.Errorf("unknown direction %q", dir)
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`
		WITH now_w AS (
			SELECT %[1]s AS a, COUNT(*) AS c
			FROM transactions
			WHERE timestamp >= $2 AND timestamp < $3 AND %[1]s IS NOT NULL
			GROUP BY %[1]s
			HAVING COUNT(*) >= $4
		), prev_w AS (
			SELECT %[1]s AS a, COUNT(*) AS c
			FROM transactions
			WHERE timestamp >= $1 AND timestamp < $2
				AND %[1]s IN (SELECT a FROM now_w)
			GROUP BY %[1]s
		)
		SELECT n.a, n.c, COALESCE(p.c, 0)
		FROM now_w n
		LEFT JOIN prev_w p ON p.a = n.a
		ORDER BY (n.c - COALESCE(p.c, 0)) DESC, n.a
		LIMIT $5
	`, col)

	rows, err := r.db.QueryContext(ctx, query, span.PrevStart, span.NowStart, span.End, minNow, limit)
	if err != nil {
		return nil, fmt.Errorf("%s window counts: %w", dir, err)
	}
	return collectWindowCounts(rows)
}

// DegreeCounts returns addresses whose combined outbound and inbound count in
// [since, until) is at least minTotal.
func (r *ActivityRepo) DegreeCounts(ctx context.Context, since, until time.Time, minTotal int64, limit int) ([]model.DegreeCount, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		WITH recent AS (
			SELECT from_address AS a, COUNT(*) AS out_c, 0::BIGINT AS in_c
			FROM transactions
			WHERE timestamp >= $1 AND timestamp < $2
			GROUP BY from_address
			UNION ALL
			SELECT to_address AS a, 0::BIGINT AS out_c, COUNT(*) AS in_c
			FROM transactions
			WHERE timestamp >= $1 AND timestamp < $2 AND to_address IS NOT NULL
			GROUP BY to_address
		), agg AS (
			SELECT a, SUM(out_c)::BIGINT AS out_c, SUM(in_c)::BIGINT AS in_c
			FROM recent
			GROUP BY a
		)
		SELECT a, out_c, in_c
		FROM agg
		WHERE out_c + in_c >= $3
		ORDER BY out_c + in_c DESC, a
		LIMIT $4
	`, since, until, minTotal, limit)
	if err != nil {
		return nil, fmt.Errorf("degree counts: %w", err)
	}
	defer rows.Close()

	var out []model.DegreeCount
	for rows.Next() {
		var d model.DegreeCount
		if err := rows.Scan(&d.Address, &d.Outbound, &d.Inbound); err != nil {
			return nil, fmt.Errorf("scan degree count: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CounterpartyCounts groups interactions that touch any hub address by the
// other party and compares the two windows.
func (r *ActivityRepo) CounterpartyCounts(ctx context.Context, hubs []string, span model.WindowSpan, minNow int64, limit int) ([]model.WindowCount, error) {
	if len(hubs) == 0 {
		return nil, nil
	}

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		WITH touched AS (
			SELECT
				CASE WHEN from_address = ANY($1) THEN to_address ELSE from_address END AS cp,
				timestamp AS ts
			FROM transactions
			WHERE timestamp >= $2 AND timestamp < $4
				AND (from_address = ANY($1) OR to_address = ANY($1))
		), counted AS (
			SELECT cp,
				COUNT(*) FILTER (WHERE ts >= $3) AS now_c,
				COUNT(*) FILTER (WHERE ts < $3) AS prev_c
			FROM touched
			WHERE cp IS NOT NULL AND NOT (cp = ANY($1))
			GROUP BY cp
		)
		SELECT cp, now_c, prev_c
		FROM counted
		WHERE now_c >= $5
		ORDER BY (now_c - prev_c) DESC, cp
		LIMIT $6
	`, pq.Array(hubs), span.PrevStart, span.NowStart, span.End, minNow, limit)
	if err != nil {
		return nil, fmt.Errorf("counterparty counts: %w", err)
	}
	return collectWindowCounts(rows)
}

// Summary counts rows ingested since the given time for the runbook view.
// Every figure uses created_at, so backfilled history counts when it lands.
func (r *ActivityRepo) Summary(ctx context.Context, since time.Time) (model.ActivitySummary, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var s model.ActivitySummary
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM transactions WHERE created_at >= $1),
			(SELECT COUNT(*) FROM token_transfers WHERE created_at >= $1),
			(SELECT COUNT(*) FROM alerts WHERE created_at >= $1)
	`, since).Scan(&s.Transactions, &s.TokenTransfers, &s.Alerts)
	if err != nil {
		return s, fmt.Errorf("activity summary: %w", err)
	}
	return s, nil
}

type sqlRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

func collectWindowCounts(rows sqlRows) ([]model.WindowCount, error) {
	defer rows.Close()
	var out []model.WindowCount
	for rows.Next() {
		var wc model.WindowCount
		if err := rows.Scan(&wc.Address, &wc.Now, &wc.Prev); err != nil {
			return nil, fmt.Errorf("scan window count: %w", err)
		}
		out = append(out, wc)
	}
	return out, rows.Err()
}
