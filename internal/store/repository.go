package store

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

// TxBeginner abstracts the ability to begin a database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// CursorRepository provides access to the ingest_state key/value table.
// Stream pointers go through AdvanceTx so they only move forward.
type CursorRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetBlock(ctx context.Context, key string) (int64, bool, error)
	Set(ctx context.Context, key, value string) error
	AdvanceTx(ctx context.Context, tx *sql.Tx, key string, block int64) error
	All(ctx context.Context) ([]model.IngestState, error)
}

// DeadLetterRepository provides access to unrecoverable ingest ranges.
type DeadLetterRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, dl *model.DeadLetter) (int64, error)
	Get(ctx context.Context, id int64) (*model.DeadLetter, error)
	ListOpen(ctx context.Context, limit int) ([]model.DeadLetter, error)
	List(ctx context.Context, limit int, status *model.DeadLetterStatus) ([]model.DeadLetter, error)
	MarkResolvedTx(ctx context.Context, tx *sql.Tx, id int64) error
	RecordFailureTx(ctx context.Context, tx *sql.Tx, id int64, errMsg string) error
	CountByStatus(ctx context.Context) (map[model.DeadLetterStatus]int64, error)
}

// TransactionRepository writes block transactions. InsertTx reports whether
// the row was new.
type TransactionRepository interface {
	InsertTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) (bool, error)
}

// TokenTransferRepository writes decoded Transfer events. InsertTx reports
// whether the row was new.
type TokenTransferRepository interface {
	InsertTx(ctx context.Context, tx *sql.Tx, t *model.TokenTransfer) (bool, error)
}

// AddressStatRepository applies additive address accumulator deltas.
type AddressStatRepository interface {
	UpsertTx(ctx context.Context, tx *sql.Tx, delta model.AddressStatDelta) error
	Get(ctx context.Context, address string) (*model.AddressStat, error)
}

// EdgeRepository appends interaction edges.
type EdgeRepository interface {
	AppendTx(ctx context.Context, tx *sql.Tx, e *model.EdgeEvent) error
}

// ActivityRepository answers the windowed aggregate queries the alert rules run.
type ActivityRepository interface {
	DirectionalCounts(ctx context.Context, dir model.Direction, span model.WindowSpan, minNow int64, limit int) ([]model.WindowCount, error)
	DegreeCounts(ctx context.Context, since, until time.Time, minTotal int64, limit int) ([]model.DegreeCount, error)
	CounterpartyCounts(ctx context.Context, hubs []string, span model.WindowSpan, minNow int64, limit int) ([]model.WindowCount, error)
	Summary(ctx context.Context, since time.Time) (model.ActivitySummary, error)
}

// AlertRepository persists alerts and their lifecycle.
type AlertRepository interface {
	// InsertIfCooledDown inserts a unless an alert with the same fingerprint
	// was created within cooldown before a.CreatedAt. The check and the
	// insert are atomic with respect to concurrent callers.
	InsertIfCooledDown(ctx context.Context, a *model.Alert, cooldown time.Duration) (bool, error)
	ListRecent(ctx context.Context, limit int, status *model.AlertStatus) ([]model.Alert, error)
	ListByAddress(ctx context.Context, address string, limit int, status *model.AlertStatus) ([]model.Alert, error)
	ListQueue(ctx context.Context, limit int, status model.AlertStatus) ([]model.Alert, error)
	// UpdateStatus returns nil when no alert has the id.
	UpdateStatus(ctx context.Context, id int64, status model.AlertStatus, assignee *string, at time.Time) (*model.Alert, error)
	CountByStatus(ctx context.Context) (map[model.AlertStatus]int64, error)
}

// ThresholdRepository stores per-field threshold overrides.
type ThresholdRepository interface {
	Overrides(ctx context.Context) (map[model.RuleType]model.ThresholdPatch, error)
	Patch(ctx context.Context, rule model.RuleType, patch model.ThresholdPatch) error
	ReplaceAll(ctx context.Context, set model.ThresholdSet) error
}
