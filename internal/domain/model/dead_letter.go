package model

import "time"

type DeadLetterStatus string

const (
	DeadLetterOpen     DeadLetterStatus = "open"
	DeadLetterResolved DeadLetterStatus = "resolved"
)

// DeadLetterStageLogs marks token-transfer log ranges that failed at the
// minimum chunk size.
const DeadLetterStageLogs = "logs_backfill"

type DeadLetter struct {
	ID         int64            `db:"id" json:"id"`
	Stage      string           `db:"stage" json:"stage"`
	StartBlock int64            `db:"start_block" json:"start_block"`
	EndBlock   int64            `db:"end_block" json:"end_block"`
	Error      string           `db:"error" json:"error"`
	RetryCount int              `db:"retry_count" json:"retry_count"`
	Status     DeadLetterStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}
