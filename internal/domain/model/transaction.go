package model

import "time"

type Transaction struct {
	TxHash      string     `db:"tx_hash"`
	BlockNumber int64      `db:"block_number"`
	FromAddress string     `db:"from_address"`
	ToAddress   *string    `db:"to_address"` // nil for contract creation
	ValueWei    string     `db:"value_wei"`  // NUMERIC(78,0) as string
	Success     *bool      `db:"success"`
	Timestamp   *time.Time `db:"timestamp"`
}

// IsContractCreation reports whether the transaction has no recipient.
func (t *Transaction) IsContractCreation() bool {
	return t.ToAddress == nil || *t.ToAddress == ""
}

// AddressStatDelta is an additive contribution to an address accumulator.
// Applying deltas in any order converges: block bounds merge with min/max,
// counters merge with sum.
type AddressStatDelta struct {
	Address           string
	FirstSeenBlock    int64
	LastSeenBlock     int64
	TxCount           int64
	ContractsDeployed int64
}

// Merge folds other into d. Both deltas must refer to the same address.
func (d *AddressStatDelta) Merge(other AddressStatDelta) {
	if other.FirstSeenBlock < d.FirstSeenBlock {
		d.FirstSeenBlock = other.FirstSeenBlock
	}
	if other.LastSeenBlock > d.LastSeenBlock {
		d.LastSeenBlock = other.LastSeenBlock
	}
	d.TxCount += other.TxCount
	d.ContractsDeployed += other.ContractsDeployed
}

type AddressStat struct {
	Address           string `db:"address"`
	FirstSeenBlock    int64  `db:"first_seen_block"`
	LastSeenBlock     int64  `db:"last_seen_block"`
	TxCount           int64  `db:"tx_count"`
	ContractsDeployed int64  `db:"contracts_deployed"`
}

// EdgeEvent is one observed src->dst interaction. Rows are append-only and
// aggregated by readers.
type EdgeEvent struct {
	TxHash        string     `db:"tx_hash"`
	BlockNumber   int64      `db:"block_number"`
	SrcAddress    string     `db:"src_address"`
	DstAddress    string     `db:"dst_address"`
	TxCount       int64      `db:"tx_count"`
	TotalValueWei string     `db:"total_value_wei"`
	WindowStart   *time.Time `db:"window_start"`
	WindowEnd     *time.Time `db:"window_end"`
}
