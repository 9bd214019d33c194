package model

import "time"

// Stream pointer keys. Each holds the last fully committed block number.
const (
	CursorKeyTxBlock  = "last_block"
	CursorKeyLogBlock = "last_log_block"
)

// Diagnostic keys written alongside the stream pointers.
const (
	StateKeyCurrentRPC         = "current_rpc"
	StateKeyLastRPCAttempt     = "last_rpc_attempt"
	StateKeyLastLogsRPC        = "last_logs_rpc"
	StateKeyLastLogsRPCAttempt = "last_logs_rpc_attempt"
	StateKeyHeadRPC            = "head_rpc"
	StateKeyHeadRPCAttempt     = "head_rpc_attempt"
	StateKeyChainHead          = "chain_head"
	StateKeySafeHead           = "safe_head"
	StateKeyLastError          = "last_error"
	StateKeyLastErrorAt        = "last_error_at"
)

// MaxLastErrorLen bounds the stored last_error diagnostic.
const MaxLastErrorLen = 800

type IngestState struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}
