package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
	"github.com/0xdefence/basetrace/internal/pipeline/retry"
	"github.com/0xdefence/basetrace/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RunReplay re-attempts open dead letters, oldest first, in batches until
// ctx is canceled or storage is declared unavailable.
func (w *Worker) RunReplay(ctx context.Context) error {
	w.logger.Info("replay worker started",
		"batch_size", w.cfg.ReplayBatchSize,
		"interval", w.cfg.ReplayInterval,
	)
	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("replay worker stopping")
			return err
		}

		delay := w.cfg.ReplayInterval
		if err := w.replayBatch(ctx); err != nil {
			if fatal := w.handleIterationError(ctx, err); fatal != nil {
				return fatal
			}
			delay = w.cfg.ErrorDelay
		} else {
			w.recordSuccess()
		}

		if err := w.sleepFn(ctx, delay); err != nil {
			w.logger.Info("replay worker stopping")
			return err
		}
	}
}

func (w *Worker) replayBatch(ctx context.Context) error {
	entries, err := w.deadLetters.ListOpen(ctx, w.cfg.ReplayBatchSize)
	if err != nil {
		return retry.Storage(fmt.Errorf("list open dead letters: %w", err))
	}
	if len(entries) == 0 {
		return nil
	}

	resolved := 0
	for i := range entries {
		ok, err := w.ReplayEntry(ctx, &entries[i])
		if err != nil {
			return err
		}
		if ok {
			resolved++
		}
	}
	w.logger.Info("replay batch finished",
		"entries", len(entries),
		"resolved", resolved,
	)
	return nil
}

// ReplayEntry re-fetches the entry's range through the adaptive chunker.
// The entry is resolved when every block in it succeeds; otherwise its
// retry count is incremented and its error replaced. Transfers that were
// fetched are written either way. No new dead letters are created.
func (w *Worker) ReplayEntry(ctx context.Context, dl *model.DeadLetter) (resolved bool, err error) {
	ctx, span := tracing.Tracer("ingest").Start(ctx, "ingest.replayEntry",
		trace.WithAttributes(
			attribute.Int64("dead_letter_id", dl.ID),
			attribute.Int64("from", dl.StartBlock),
			attribute.Int64("to", dl.EndBlock),
		),
	)
	defer func() { tracing.End(span, err) }()

	res, err := w.fetchLogs(ctx, dl.StartBlock, dl.EndBlock)
	if err != nil {
		return false, fmt.Errorf("replay dead letter %d: %w", dl.ID, err)
	}
	transfers, undecodable := decodeTransfers(res.Logs)
	res.Failed = append(res.Failed, undecodable...)

	dbTx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return false, retry.Storage(fmt.Errorf("begin replay %d: %w", dl.ID, err))
	}
	defer dbTx.Rollback()

	if _, err := w.writeTransfers(ctx, dbTx, transfers); err != nil {
		return false, retry.Storage(fmt.Errorf("replay dead letter %d: %w", dl.ID, err))
	}
	resolved = len(res.Failed) == 0
	if resolved {
		err = w.deadLetters.MarkResolvedTx(ctx, dbTx, dl.ID)
	} else {
		err = w.deadLetters.RecordFailureTx(ctx, dbTx, dl.ID, failureSummary(res.Failed))
	}
	if err != nil {
		return false, retry.Storage(err)
	}
	if err := dbTx.Commit(); err != nil {
		return false, retry.Storage(fmt.Errorf("commit replay %d: %w", dl.ID, err))
	}

	if resolved {
		metrics.ReplayAttemptsTotal.WithLabelValues("resolved").Inc()
		w.logger.Info("dead letter resolved", "id", dl.ID, "from", dl.StartBlock, "to", dl.EndBlock)
	} else {
		metrics.ReplayAttemptsTotal.WithLabelValues("failed").Inc()
		w.logger.Warn("dead letter replay failed",
			"id", dl.ID,
			"failed_blocks", len(res.Failed),
			"retry_count", dl.RetryCount+1,
		)
	}
	return resolved, nil
}

func failureSummary(failed []blockFailure) string {
	errs := make([]error, 0, len(failed))
	for _, f := range failed {
		errs = append(errs, fmt.Errorf("block %d: %w", f.Block, f.Err))
	}
	msg := strings.ReplaceAll(errors.Join(errs...).Error(), "\n", "; ")
	if len(msg) > model.MaxLastErrorLen {
		msg = msg[:model.MaxLastErrorLen]
	}
	return msg
}
