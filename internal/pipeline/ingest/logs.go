package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/0xdefence/basetrace/internal/chain/base/rpc"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
	"github.com/0xdefence/basetrace/internal/pipeline/retry"
	"github.com/0xdefence/basetrace/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// blockFailure is a single block whose logs could not be fetched or decoded.
type blockFailure struct {
	Block int64
	Err   error
}

// chunkResult is the outcome of an adaptive fetch over one range.
type chunkResult struct {
	Logs    []*rpc.Log
	Failed  []blockFailure
	Visited int
	// Meta is taken from the last successful sub-window.
	Meta rpc.CallMeta
}

// fetchLogs fetches Transfer logs for [from, to]. A failed range is split at
// its midpoint and each half is fetched depth-first; a single block that
// still fails is reported in Failed. Only context cancellation aborts.
func (w *Worker) fetchLogs(ctx context.Context, from, to int64) (*chunkResult, error) {
	res := &chunkResult{}
	if err := w.fetchRange(ctx, from, to, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (w *Worker) fetchRange(ctx context.Context, from, to int64, res *chunkResult) error {
	res.Visited++
	logs, meta, err := w.client.Logs(ctx, rpc.RangeFilter(from, to, TransferTopic))
	if err == nil {
		res.Logs = append(res.Logs, logs...)
		res.Meta = meta
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if from >= to {
		w.logger.Warn("log fetch failed at minimum range",
			"block", from,
			"error", err,
		)
		res.Failed = append(res.Failed, blockFailure{Block: from, Err: err})
		return nil
	}

	mid := from + (to-from)/2
	metrics.IngestLogBisections.Inc()
	w.logger.Debug("splitting log range",
		"from", from,
		"to", to,
		"mid", mid,
		"error", err,
	)
	if err := w.fetchRange(ctx, from, mid, res); err != nil {
		return err
	}
	return w.fetchRange(ctx, mid+1, to, res)
}

// decodeTransfers decodes every three-topic Transfer log in logs. A log that
// fails to decode marks its whole block as failed: transfers already decoded
// for that block are dropped so the block can be replayed as a unit.
func decodeTransfers(logs []*rpc.Log) ([]*model.TokenTransfer, []blockFailure) {
	var failed []blockFailure
	bad := make(map[int64]struct{})
	out := make([]*model.TokenTransfer, 0, len(logs))
	for _, l := range logs {
		t, ok, err := decodeTransfer(l)
		if err != nil {
			block, perr := rpc.ParseHexInt64(l.BlockNumber)
			if perr != nil {
				// Unattributable to a block; nothing to replay.
				metrics.IngestTransfersUndecodable.Inc()
				continue
			}
			if _, seen := bad[block]; !seen {
				bad[block] = struct{}{}
				failed = append(failed, blockFailure{Block: block, Err: err})
			}
			continue
		}
		if !ok {
			metrics.IngestTransfersUndecodable.Inc()
			continue
		}
		out = append(out, t)
	}
	if len(bad) == 0 {
		return out, nil
	}
	kept := out[:0]
	for _, t := range out {
		if _, drop := bad[t.BlockNumber]; !drop {
			kept = append(kept, t)
		}
	}
	return kept, failed
}

// ingestLogWindow processes [from, to] and advances the log cursor to to,
// parking blocks that failed at minimum granularity as dead letters.
func (w *Worker) ingestLogWindow(ctx context.Context, from, to int64) (err error) {
	start := time.Now()
	ctx, span := tracing.Tracer("ingest").Start(ctx, "ingest.logWindow",
		trace.WithAttributes(
			attribute.Int64("from", from),
			attribute.Int64("to", to),
		),
	)
	defer func() {
		tracing.End(span, err)
		metrics.IngestCycleLatency.WithLabelValues("logs").Observe(time.Since(start).Seconds())
	}()

	res, err := w.fetchLogs(ctx, from, to)
	if err != nil {
		return fmt.Errorf("fetch logs [%d,%d]: %w", from, to, err)
	}
	transfers, undecodable := decodeTransfers(res.Logs)
	for _, f := range undecodable {
		w.logger.Warn("transfer log decode failed",
			"block", f.Block,
			"error", f.Err,
		)
	}
	res.Failed = append(res.Failed, undecodable...)
	span.SetAttributes(
		attribute.Int("transfers", len(transfers)),
		attribute.Int("dead_letters", len(res.Failed)),
		attribute.Int("sub_windows", res.Visited),
	)

	inserted, err := w.writeLogWindow(ctx, from, to, transfers, res.Failed)
	if err != nil {
		return retry.Storage(err)
	}

	if res.Meta.Endpoint != "" {
		if err := w.setDiagnostics(ctx, map[string]string{
			model.StateKeyLastLogsRPC:        res.Meta.Endpoint,
			model.StateKeyLastLogsRPCAttempt: strconv.Itoa(res.Meta.Attempt),
		}); err != nil {
			return err
		}
	}

	metrics.IngestLogWindows.Inc()
	metrics.IngestTransfersWritten.Add(float64(inserted))
	metrics.IngestDeadLettersCreated.Add(float64(len(res.Failed)))
	metrics.IngestCursorBlock.WithLabelValues("logs").Set(float64(to))
	w.logger.Debug("log window committed",
		"from", from,
		"to", to,
		"transfers", len(transfers),
		"inserted", inserted,
		"dead_letters", len(res.Failed),
	)
	return nil
}

func (w *Worker) writeLogWindow(ctx context.Context, from, to int64, transfers []*model.TokenTransfer, failed []blockFailure) (int, error) {
	dbTx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin log window [%d,%d]: %w", from, to, err)
	}
	defer dbTx.Rollback()

	inserted, err := w.writeTransfers(ctx, dbTx, transfers)
	if err != nil {
		return 0, err
	}
	for _, f := range failed {
		dl := &model.DeadLetter{
			Stage:      model.DeadLetterStageLogs,
			StartBlock: f.Block,
			EndBlock:   f.Block,
			Error:      truncateError(f.Err),
		}
		if _, err := w.deadLetters.CreateTx(ctx, dbTx, dl); err != nil {
			return 0, fmt.Errorf("dead-letter block %d: %w", f.Block, err)
		}
	}
	if err := w.cursors.AdvanceTx(ctx, dbTx, model.CursorKeyLogBlock, to); err != nil {
		return 0, fmt.Errorf("advance log cursor to %d: %w", to, err)
	}
	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit log window [%d,%d]: %w", from, to, err)
	}
	return inserted, nil
}

func (w *Worker) writeTransfers(ctx context.Context, dbTx *sql.Tx, transfers []*model.TokenTransfer) (int, error) {
	inserted := 0
	for _, t := range transfers {
		created, err := w.transfers.InsertTx(ctx, dbTx, t)
		if err != nil {
			return 0, fmt.Errorf("insert transfer %s: %w", t.TxHash, err)
		}
		if created {
			inserted++
		}
	}
	return inserted, nil
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > model.MaxLastErrorLen {
		return msg[:model.MaxLastErrorLen]
	}
	return msg
}
