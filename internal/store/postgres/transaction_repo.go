package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

type TransactionRepo struct {
	db *DB
}

func NewTransactionRepo(db *DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// InsertTx inserts t unless a row with the same hash exists. It reports
// whether a row was created.
func (r *TransactionRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (tx_hash, block_number, from_address, to_address, value_wei, success, timestamp)
		VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7)
		ON CONFLICT (tx_hash) DO NOTHING
	`, t.TxHash, t.BlockNumber, t.FromAddress, t.ToAddress, t.ValueWei, t.Success, t.Timestamp)
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: %w", t.TxHash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: rows affected: %w", t.TxHash, err)
	}
	return n == 1, nil
}
