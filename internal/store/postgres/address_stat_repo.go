package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

type AddressStatRepo struct {
	db *DB
}

func NewAddressStatRepo(db *DB) *AddressStatRepo {
	return &AddressStatRepo{db: db}
}

// UpsertTx merges delta into the address row: block bounds by LEAST/GREATEST,
// counters by addition.
func (r *AddressStatRepo) UpsertTx(ctx context.Context, tx *sql.Tx, delta model.AddressStatDelta) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO addresses (address, first_seen_block, last_seen_block, tx_count, contracts_deployed)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			first_seen_block = LEAST(addresses.first_seen_block, EXCLUDED.first_seen_block),
			last_seen_block = GREATEST(addresses.last_seen_block, EXCLUDED.last_seen_block),
			tx_count = addresses.tx_count + EXCLUDED.tx_count,
			contracts_deployed = addresses.contracts_deployed + EXCLUDED.contracts_deployed,
			updated_at = now()
	`, delta.Address, delta.FirstSeenBlock, delta.LastSeenBlock, delta.TxCount, delta.ContractsDeployed)
	if err != nil {
		return fmt.Errorf("upsert address %s: %w", delta.Address, err)
	}
	return nil
}

func (r *AddressStatRepo) Get(ctx context.Context, address string) (*model.AddressStat, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var s model.AddressStat
	err := r.db.QueryRowContext(ctx, `
		SELECT address, first_seen_block, last_seen_block, tx_count, contracts_deployed
		FROM addresses WHERE address = $1
	`, address).Scan(&s.Address, &s.FirstSeenBlock, &s.LastSeenBlock, &s.TxCount, &s.ContractsDeployed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get address %s: %w", address, err)
	}
	return &s, nil
}
