package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

// ThresholdRepo stores operator overrides per rule and field. A NULL column
// means the built-in default applies.
type ThresholdRepo struct {
	db *DB
}

func NewThresholdRepo(db *DB) *ThresholdRepo {
	return &ThresholdRepo{db: db}
}

func (r *ThresholdRepo) Overrides(ctx context.Context) (map[model.RuleType]model.ThresholdPatch, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT rule_type, min_ratio, min_delta, min_count, cooldown_hours, enabled
		FROM alert_thresholds
	`)
	if err != nil {
		return nil, fmt.Errorf("list threshold overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[model.RuleType]model.ThresholdPatch)
	for rows.Next() {
		var (
			rule     string
			ratio    sql.NullFloat64
			delta    sql.NullInt64
			count    sql.NullInt64
			cooldown sql.NullInt32
			enabled  sql.NullBool
		)
		if err := rows.Scan(&rule, &ratio, &delta, &count, &cooldown, &enabled); err != nil {
			return nil, fmt.Errorf("scan threshold override: %w", err)
		}
		var p model.ThresholdPatch
		if ratio.Valid {
			p.MinRatio = &ratio.Float64
		}
		if delta.Valid {
			p.MinDelta = &delta.Int64
		}
		if count.Valid {
			p.MinCount = &count.Int64
		}
		if cooldown.Valid {
			h := int(cooldown.Int32)
			p.CooldownHours = &h
		}
		if enabled.Valid {
			p.Enabled = &enabled.Bool
		}
		out[model.RuleType(rule)] = p
	}
	return out, rows.Err()
}

// Patch writes the non-nil fields of patch and leaves the others as stored.
func (r *ThresholdRepo) Patch(ctx context.Context, rule model.RuleType, patch model.ThresholdPatch) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	return upsertThreshold(ctx, r.db, rule, patch)
}

// ReplaceAll stores a complete threshold set in one transaction.
func (r *ThresholdRepo) ReplaceAll(ctx context.Context, set model.ThresholdSet) error {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin threshold replace: %w", err)
	}
	defer tx.Rollback()

	for _, rule := range model.RuleTypes {
		t, ok := set[rule]
		if !ok {
			continue
		}
		if err := upsertThreshold(ctx, tx, rule, model.FullPatch(t)); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit threshold replace: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertThreshold(ctx context.Context, db execer, rule model.RuleType, p model.ThresholdPatch) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO alert_thresholds (rule_type, min_ratio, min_delta, min_count, cooldown_hours, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (rule_type) DO UPDATE SET
			min_ratio = COALESCE(EXCLUDED.min_ratio, alert_thresholds.min_ratio),
			min_delta = COALESCE(EXCLUDED.min_delta, alert_thresholds.min_delta),
			min_count = COALESCE(EXCLUDED.min_count, alert_thresholds.min_count),
			cooldown_hours = COALESCE(EXCLUDED.cooldown_hours, alert_thresholds.cooldown_hours),
			enabled = COALESCE(EXCLUDED.enabled, alert_thresholds.enabled),
			updated_at = now()
	`, string(rule), p.MinRatio, p.MinDelta, p.MinCount, p.CooldownHours, p.Enabled)
	if err != nil {
		return fmt.Errorf("upsert threshold %s: %w", rule, err)
	}
	return nil
}
