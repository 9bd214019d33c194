package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/0xdefence/basetrace/internal/chain/base/rpc"
	"github.com/0xdefence/basetrace/internal/circuitbreaker"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
	"github.com/0xdefence/basetrace/internal/pipeline/retry"
	"github.com/0xdefence/basetrace/internal/store"
)

// ErrStorageUnavailable is returned by Run and RunReplay once storage has
// failed MaxStorageFailures iterations in a row.
var ErrStorageUnavailable = errors.New("storage unavailable")

const (
	defaultConfirmations      = 3
	defaultLogChunkSize       = 200
	defaultIdleInterval       = 5 * time.Second
	defaultErrorDelay         = 3 * time.Second
	defaultMaxStorageFailures = 20
	defaultReplayBatchSize    = 25
	defaultReplayInterval     = 5 * time.Second
)

// ChainClient is the part of the RPC client the worker uses.
type ChainClient interface {
	BlockNumber(ctx context.Context) (int64, rpc.CallMeta, error)
	BlockByNumber(ctx context.Context, number int64, fullTx bool) (*rpc.Block, rpc.CallMeta, error)
	Logs(ctx context.Context, filter rpc.LogFilter) ([]*rpc.Log, rpc.CallMeta, error)
}

type Config struct {
	Confirmations      int64
	LogChunkSize       int64
	StartBlock         int64
	IdleInterval       time.Duration
	ErrorDelay         time.Duration
	MaxStorageFailures int
	ReplayBatchSize    int
	ReplayInterval     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Confirmations < 0 {
		c.Confirmations = defaultConfirmations
	}
	if c.LogChunkSize <= 0 {
		c.LogChunkSize = defaultLogChunkSize
	}
	if c.StartBlock < 0 {
		c.StartBlock = 0
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = defaultIdleInterval
	}
	if c.ErrorDelay <= 0 {
		c.ErrorDelay = defaultErrorDelay
	}
	if c.MaxStorageFailures <= 0 {
		c.MaxStorageFailures = defaultMaxStorageFailures
	}
	if c.ReplayBatchSize <= 0 {
		c.ReplayBatchSize = defaultReplayBatchSize
	}
	if c.ReplayInterval <= 0 {
		c.ReplayInterval = defaultReplayInterval
	}
	return c
}

// Stores groups the repositories the worker writes to.
type Stores struct {
	DB             store.TxBeginner
	Cursors        store.CursorRepository
	DeadLetters    store.DeadLetterRepository
	Transactions   store.TransactionRepository
	TokenTransfers store.TokenTransferRepository
	AddressStats   store.AddressStatRepository
	Edges          store.EdgeRepository
}

// Worker is the single sequential ingest loop. It runs either in ingest
// mode (Run) or replay mode (RunReplay), never both at once.
type Worker struct {
	cfg          Config
	client       ChainClient
	db           store.TxBeginner
	cursors      store.CursorRepository
	deadLetters  store.DeadLetterRepository
	transactions store.TransactionRepository
	transfers    store.TokenTransferRepository
	addressStats store.AddressStatRepository
	edges        store.EdgeRepository
	breaker      *circuitbreaker.Breaker
	sleepFn      func(ctx context.Context, d time.Duration) error
	nowFn        func() time.Time
	logger       *slog.Logger
}

type Option func(*Worker)

func WithSleepFunc(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(w *Worker) { w.sleepFn = fn }
}

func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.nowFn = now }
}

func New(client ChainClient, stores Stores, cfg Config, logger *slog.Logger, opts ...Option) *Worker {
	cfg = cfg.withDefaults()
	w := &Worker{
		cfg:          cfg,
		client:       client,
		db:           stores.DB,
		cursors:      stores.Cursors,
		deadLetters:  stores.DeadLetters,
		transactions: stores.Transactions,
		transfers:    stores.TokenTransfers,
		addressStats: stores.AddressStats,
		edges:        stores.Edges,
		sleepFn:      sleepContext,
		nowFn:        time.Now,
		logger:       logger.With("component", "ingest"),
	}
	w.breaker = circuitbreaker.New(circuitbreaker.Config{
		Name:             "ingest_storage",
		FailureThreshold: cfg.MaxStorageFailures,
		OpenTimeout:      time.Hour,
		OnStateChange: func(from, to circuitbreaker.State) {
			w.logger.Warn("storage breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Run ingests blocks and logs until ctx is canceled or storage is declared
// unavailable.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("ingest worker started",
		"confirmations", w.cfg.Confirmations,
		"log_chunk_size", w.cfg.LogChunkSize,
		"start_block", w.cfg.StartBlock,
	)
	for {
		if err := ctx.Err(); err != nil {
			w.logger.Info("ingest worker stopping")
			return err
		}

		progressed, err := w.step(ctx)
		delay := w.cfg.IdleInterval
		switch {
		case err != nil:
			if fatal := w.handleIterationError(ctx, err); fatal != nil {
				return fatal
			}
			delay = w.cfg.ErrorDelay
		case progressed:
			w.recordSuccess()
			continue
		default:
			w.recordSuccess()
		}

		if err := w.sleepFn(ctx, delay); err != nil {
			w.logger.Info("ingest worker stopping")
			return err
		}
	}
}

// step runs one iteration and reports whether either cursor moved.
func (w *Worker) step(ctx context.Context) (bool, error) {
	head, meta, err := w.client.BlockNumber(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch chain head: %w", err)
	}
	safeHead := head - w.cfg.Confirmations
	metrics.IngestChainHead.Set(float64(head))
	metrics.IngestSafeHead.Set(float64(safeHead))

	if err := w.setDiagnostics(ctx, map[string]string{
		model.StateKeyHeadRPC:        meta.Endpoint,
		model.StateKeyHeadRPCAttempt: strconv.Itoa(meta.Attempt),
		model.StateKeyChainHead:      strconv.FormatInt(head, 10),
		model.StateKeySafeHead:       strconv.FormatInt(safeHead, 10),
	}); err != nil {
		return false, err
	}

	// The two streams have independent cursors; a stuck block must not
	// hold back the log window.
	progressed, blockErr := w.stepBlocks(ctx, safeHead)
	if blockErr != nil && ctx.Err() != nil {
		return progressed, blockErr
	}
	logProgressed, logErr := w.stepLogs(ctx, safeHead)
	return progressed || logProgressed, errors.Join(blockErr, logErr)
}

func (w *Worker) stepBlocks(ctx context.Context, safeHead int64) (bool, error) {
	next, err := w.nextBlock(ctx, model.CursorKeyTxBlock)
	if err != nil {
		return false, err
	}
	if next > safeHead {
		return false, nil
	}
	if err := w.ingestBlock(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (w *Worker) stepLogs(ctx context.Context, safeHead int64) (bool, error) {
	next, err := w.nextBlock(ctx, model.CursorKeyLogBlock)
	if err != nil {
		return false, err
	}
	if next > safeHead {
		return false, nil
	}
	end := next + w.cfg.LogChunkSize - 1
	if end > safeHead {
		end = safeHead
	}
	if err := w.ingestLogWindow(ctx, next, end); err != nil {
		return false, err
	}
	return true, nil
}

// nextBlock returns the first unprocessed block of a stream, bounded below
// by the configured start block.
func (w *Worker) nextBlock(ctx context.Context, key string) (int64, error) {
	last, ok, err := w.cursors.GetBlock(ctx, key)
	if err != nil {
		return 0, retry.Storage(fmt.Errorf("read cursor %s: %w", key, err))
	}
	next := w.cfg.StartBlock
	if ok && last+1 > next {
		next = last + 1
	}
	return next, nil
}

// handleIterationError records err and returns a non-nil error only when
// the loop must stop.
func (w *Worker) handleIterationError(ctx context.Context, err error) error {
	decision := retry.Classify(err)
	if decision.Kind == retry.KindCanceled || ctx.Err() != nil {
		return ctx.Err()
	}
	metrics.IngestCycleErrors.WithLabelValues(string(decision.Kind)).Inc()

	if decision.IsStorage() {
		w.breaker.RecordFailure()
		metrics.IngestStorageFailures.Set(float64(w.breaker.Failures()))
		if w.breaker.GetState() == circuitbreaker.StateOpen {
			w.logger.Error("storage failure budget exhausted",
				"failures", w.breaker.Failures(),
				"error", err,
			)
			return fmt.Errorf("%w: %d consecutive failures: %v", ErrStorageUnavailable, w.cfg.MaxStorageFailures, err)
		}
	}

	w.logger.Warn("ingest iteration failed",
		"kind", decision.Kind,
		"class", decision.Class,
		"reason", decision.Reason,
		"error", err,
	)
	w.recordLastError(ctx, err)
	return nil
}

func (w *Worker) recordSuccess() {
	w.breaker.RecordSuccess()
	metrics.IngestStorageFailures.Set(0)
}

// recordLastError stores the error diagnostics. Failures here are logged
// only, since storage may be the thing that is failing.
func (w *Worker) recordLastError(ctx context.Context, cause error) {
	err := w.setDiagnostics(ctx, map[string]string{
		model.StateKeyLastError:   truncateError(cause),
		model.StateKeyLastErrorAt: w.nowFn().UTC().Format(time.RFC3339),
	})
	if err != nil {
		w.logger.Warn("record last error failed", "error", err)
	}
}

// setDiagnostics writes diagnostic keys in a stable order.
func (w *Worker) setDiagnostics(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.cursors.Set(ctx, k, values[k]); err != nil {
			return retry.Storage(fmt.Errorf("set %s: %w", k, err))
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
