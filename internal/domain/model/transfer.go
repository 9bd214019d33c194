package model

import "time"

// TokenTransfer is a decoded ERC20 Transfer event. The natural key is
// (tx_hash, token_address, from_address, to_address, amount, block_number).
type TokenTransfer struct {
	TxHash       string     `db:"tx_hash"`
	TokenAddress string     `db:"token_address"`
	FromAddress  string     `db:"from_address"`
	ToAddress    string     `db:"to_address"`
	Amount       string     `db:"amount"` // NUMERIC(78,0) as string
	BlockNumber  int64      `db:"block_number"`
	LogIndex     *int64     `db:"log_index"`
	Timestamp    *time.Time `db:"timestamp"`
}
