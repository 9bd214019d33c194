package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
	"github.com/0xdefence/basetrace/internal/pipeline/retry"
	"github.com/0xdefence/basetrace/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errBlockUnavailable = errors.New("block not available from rpc")

// statAccumulator folds per-transaction address deltas for one block.
type statAccumulator map[string]*model.AddressStatDelta

func (a statAccumulator) add(d model.AddressStatDelta) {
	if d.Address == "" {
		return
	}
	if cur, ok := a[d.Address]; ok {
		cur.Merge(d)
		return
	}
	a[d.Address] = &d
}

// sorted returns deltas ordered by address so concurrent writers lock
// address rows in the same order.
func (a statAccumulator) sorted() []model.AddressStatDelta {
	out := make([]model.AddressStatDelta, 0, len(a))
	for _, d := range a {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func (a statAccumulator) record(t *model.Transaction) {
	sender := model.AddressStatDelta{
		Address:        t.FromAddress,
		FirstSeenBlock: t.BlockNumber,
		LastSeenBlock:  t.BlockNumber,
		TxCount:        1,
	}
	if t.IsContractCreation() {
		sender.ContractsDeployed = 1
	}
	a.add(sender)

	if !t.IsContractCreation() {
		a.add(model.AddressStatDelta{
			Address:        *t.ToAddress,
			FirstSeenBlock: t.BlockNumber,
			LastSeenBlock:  t.BlockNumber,
		})
	}
}

func edgeFor(t *model.Transaction) *model.EdgeEvent {
	if t.FromAddress == "" || t.IsContractCreation() {
		return nil
	}
	return &model.EdgeEvent{
		TxHash:        t.TxHash,
		BlockNumber:   t.BlockNumber,
		SrcAddress:    t.FromAddress,
		DstAddress:    *t.ToAddress,
		TxCount:       1,
		TotalValueWei: t.ValueWei,
		WindowStart:   t.Timestamp,
		WindowEnd:     t.Timestamp,
	}
}

// ingestBlock fetches one block with full transactions and commits its rows
// together with the transaction-stream cursor.
func (w *Worker) ingestBlock(ctx context.Context, number int64) (err error) {
	start := time.Now()
	ctx, span := tracing.Tracer("ingest").Start(ctx, "ingest.block",
		trace.WithAttributes(attribute.Int64("block", number)),
	)
	defer func() {
		tracing.End(span, err)
		metrics.IngestCycleLatency.WithLabelValues("block").Observe(time.Since(start).Seconds())
	}()

	block, meta, err := w.client.BlockByNumber(ctx, number, true)
	if err != nil {
		return fmt.Errorf("fetch block %d: %w", number, err)
	}
	if block == nil {
		return retry.Transient(fmt.Errorf("block %d: %w", number, errBlockUnavailable))
	}
	txs, err := normalizeBlock(block)
	if err != nil {
		return fmt.Errorf("normalize block %d: %w", number, err)
	}
	span.SetAttributes(attribute.Int("tx_count", len(txs)))

	inserted, err := w.writeBlock(ctx, number, txs)
	if err != nil {
		return retry.Storage(err)
	}

	if err := w.setDiagnostics(ctx, map[string]string{
		model.StateKeyCurrentRPC:     meta.Endpoint,
		model.StateKeyLastRPCAttempt: strconv.Itoa(meta.Attempt),
	}); err != nil {
		return err
	}

	metrics.IngestBlocksWritten.Inc()
	metrics.IngestTransactionsWritten.Add(float64(inserted))
	metrics.IngestCursorBlock.WithLabelValues("tx").Set(float64(number))
	w.logger.Debug("block committed", "block", number, "txs", len(txs), "inserted", inserted)
	return nil
}

// writeBlock runs the block's writes in one database transaction. Address
// stats and edges are only written for rows the insert actually created, so
// re-ingesting a block is a no-op apart from the cursor write.
func (w *Worker) writeBlock(ctx context.Context, number int64, txs []*model.Transaction) (int, error) {
	dbTx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin block %d: %w", number, err)
	}
	defer dbTx.Rollback()

	inserted, err := w.writeTransactions(ctx, dbTx, txs)
	if err != nil {
		return 0, fmt.Errorf("block %d: %w", number, err)
	}
	if err := w.cursors.AdvanceTx(ctx, dbTx, model.CursorKeyTxBlock, number); err != nil {
		return 0, fmt.Errorf("advance tx cursor to %d: %w", number, err)
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit block %d: %w", number, err)
	}
	return inserted, nil
}

func (w *Worker) writeTransactions(ctx context.Context, dbTx *sql.Tx, txs []*model.Transaction) (int, error) {
	acc := statAccumulator{}
	inserted := 0
	for _, t := range txs {
		created, err := w.transactions.InsertTx(ctx, dbTx, t)
		if err != nil {
			return 0, fmt.Errorf("insert tx %s: %w", t.TxHash, err)
		}
		if !created {
			continue
		}
		inserted++
		acc.record(t)
		if e := edgeFor(t); e != nil {
			if err := w.edges.AppendTx(ctx, dbTx, e); err != nil {
				return 0, fmt.Errorf("append edge %s: %w", t.TxHash, err)
			}
		}
	}
	for _, d := range acc.sorted() {
		if err := w.addressStats.UpsertTx(ctx, dbTx, d); err != nil {
			return 0, fmt.Errorf("upsert address %s: %w", d.Address, err)
		}
	}
	return inserted, nil
}
