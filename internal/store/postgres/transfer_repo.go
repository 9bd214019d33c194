package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

type TokenTransferRepo struct {
	db *DB
}

func NewTokenTransferRepo(db *DB) *TokenTransferRepo {
	return &TokenTransferRepo{db: db}
}

func (r *TokenTransferRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.TokenTransfer) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO token_transfers (tx_hash, token_address, from_address, to_address, amount, block_number, log_index, timestamp)
		VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT uq_token_transfers_natural DO NOTHING
	`, t.TxHash, t.TokenAddress, t.FromAddress, t.ToAddress, t.Amount, t.BlockNumber, t.LogIndex, t.Timestamp)
	if err != nil {
		return false, fmt.Errorf("insert token transfer %s: %w", t.TxHash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert token transfer %s: rows affected: %w", t.TxHash, err)
	}
	return n == 1, nil
}
