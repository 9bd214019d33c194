package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

// EdgeRepo appends interaction edges. Rows are never updated; readers group
// by (src_address, dst_address) when they need totals.
type EdgeRepo struct {
	db *DB
}

func NewEdgeRepo(db *DB) *EdgeRepo {
	return &EdgeRepo{db: db}
}

func (r *EdgeRepo) AppendTx(ctx context.Context, tx *sql.Tx, e *model.EdgeEvent) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO edges (tx_hash, block_number, src_address, dst_address, tx_count, total_value_wei, window_start, window_end)
		VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7, $8)
	`, e.TxHash, e.BlockNumber, e.SrcAddress, e.DstAddress, e.TxCount, e.TotalValueWei, e.WindowStart, e.WindowEnd)
	if err != nil {
		return fmt.Errorf("append edge %s->%s: %w", e.SrcAddress, e.DstAddress, err)
	}
	return nil
}
