package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xdefence/basetrace/internal/admin"
	"github.com/0xdefence/basetrace/internal/alert"
	"github.com/0xdefence/basetrace/internal/chain/base/rpc"
	"github.com/0xdefence/basetrace/internal/chain/ratelimit"
	"github.com/0xdefence/basetrace/internal/config"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
	"github.com/0xdefence/basetrace/internal/pipeline/ingest"
	"github.com/0xdefence/basetrace/internal/store/postgres"
	redispkg "github.com/0xdefence/basetrace/internal/store/redis"
	"github.com/0xdefence/basetrace/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName         = "basetrace"
	shutdownTimeout     = 5 * time.Second
	sweepTimeout        = 2 * time.Minute
	adminReadTimeout    = 10 * time.Second
	adminWriteTimeout   = 60 * time.Second
	healthHeaderTimeout = 5 * time.Second
)

type dbStatsProvider interface {
	Stats() sql.DBStats
}

type dbPoolStatsGauges struct {
	open         prometheus.Gauge
	inUse        prometheus.Gauge
	idle         prometheus.Gauge
	waitCount    prometheus.Gauge
	waitDuration prometheus.Gauge
}

func collectDBPoolStats(db dbStatsProvider, gauges dbPoolStatsGauges) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("db pool stats collection panicked: %v", r)
		}
	}()
	if db == nil {
		return fmt.Errorf("db stats provider is nil")
	}

	stats := db.Stats()
	gauges.open.Set(float64(stats.OpenConnections))
	gauges.inUse.Set(float64(stats.InUse))
	gauges.idle.Set(float64(stats.Idle))
	gauges.waitCount.Set(float64(stats.WaitCount))
	gauges.waitDuration.Set(stats.WaitDuration.Seconds())
	return nil
}

func startDBPoolStatsPump(ctx context.Context, db dbStatsProvider, intervalMS int, logger *slog.Logger) {
	if db == nil || intervalMS <= 0 {
		return
	}

	gauges := dbPoolStatsGauges{
		open:         metrics.DBPoolOpen,
		inUse:        metrics.DBPoolInUse,
		idle:         metrics.DBPoolIdle,
		waitCount:    metrics.DBPoolWaitCount,
		waitDuration: metrics.DBPoolWaitDurationSeconds,
	}

	ticker := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)
	go func() {
		defer ticker.Stop()

		if err := collectDBPoolStats(db, gauges); err != nil {
			logger.Warn("failed to collect initial db pool stats", "error", err)
		}

		for {
			select {
			case <-ctx.Done():
				logger.Info("db pool stats sampler stopped", "cause", "context_done")
				return
			case <-ticker.C:
				if err := collectDBPoolStats(db, gauges); err != nil {
					logger.Warn("failed to collect db pool stats", "error", err)
				}
			}
		}
	}()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func bridgeAddresses(cfg config.AlertConfig) []string {
	if len(cfg.BridgeAddresses) > 0 {
		return cfg.BridgeAddresses
	}
	return alert.DefaultBridgeAddresses
}

func loadPresets(path string) (map[string]model.ThresholdSet, error) {
	if path == "" {
		return alert.DefaultPresets(), nil
	}
	return alert.LoadPresets(path)
}

// buildNotifierChannels returns the configured delivery channels and the
// closers of any connections they opened.
func buildNotifierChannels(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]alert.Notifier, []func() error, error) {
	var channels []alert.Notifier
	var closers []func() error

	if cfg.Notify.SlackWebhookURL != "" {
		channels = append(channels, alert.NewSlackNotifier(cfg.Notify.SlackWebhookURL))
	}
	if cfg.Notify.WebhookURL != "" {
		channels = append(channels, alert.NewWebhookNotifier(cfg.Notify.WebhookURL))
	}
	if cfg.Redis.URL != "" {
		stream, err := redispkg.NewAlertStream(ctx, cfg.Redis.URL, cfg.Redis.AlertStream, cfg.Redis.MaxLen)
		if err != nil {
			return nil, closers, fmt.Errorf("initialize redis alert stream: %w", err)
		}
		closers = append(closers, stream.Close)
		channels = append(channels, alert.NewStreamNotifier(stream))
		logger.Info("redis alert stream enabled", "stream", cfg.Redis.AlertStream, "max_len", cfg.Redis.MaxLen)
	}
	return channels, closers, nil
}

type sweeper interface {
	Sweep(ctx context.Context, limit int) ([]model.Alert, error)
}

// startSweepCron schedules a background alert sweep. An empty schedule
// returns a nil scheduler.
func startSweepCron(ctx context.Context, schedule string, svc sweeper, logger *slog.Logger) (*cron.Cron, error) {
	if schedule == "" {
		return nil, nil
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	_, err := c.AddFunc(schedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
		defer cancel()
		created, err := svc.Sweep(sweepCtx, alert.MaxLimit)
		if err != nil {
			logger.Warn("scheduled alert sweep failed", "error", err)
			return
		}
		logger.Info("scheduled alert sweep finished", "created", len(created))
	})
	if err != nil {
		return nil, fmt.Errorf("parse ALERT_SWEEP_SCHEDULE %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	logger.Info("starting basetrace",
		"rpc_endpoints", len(cfg.RPC.Endpoints()),
		"replay_mode", cfg.Ingest.ReplayMode,
		"confirmations", cfg.Ingest.Confirmations,
		"start_block", cfg.Ingest.StartBlock,
		"admin_port", cfg.Server.AdminPort,
		"health_port", cfg.Server.HealthPort,
	)

	if err := run(cfg, logger); err != nil {
		if errors.Is(err, ingest.ErrStorageUnavailable) {
			logger.Error("storage unavailable, exiting", "error", err)
		} else {
			logger.Error("indexer exited with error", "error", err)
		}
		os.Exit(1)
	}
	logger.Info("indexer shut down gracefully")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracingEndpoint := ""
	if cfg.Tracing.Enabled {
		tracingEndpoint = cfg.Tracing.Endpoint
	}
	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: serviceName,
		Endpoint:    tracingEndpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	db, err := postgres.New(postgres.Config{
		URL:                cfg.DB.URL,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetime:    cfg.DB.ConnMaxLifetime,
		StatementTimeoutMS: cfg.DB.StatementTimeoutMS,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("connected to database")

	if cfg.DB.Migrate {
		if err := db.RunMigrations(ctx, postgres.Migrations()); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	cursors := postgres.NewCursorRepo(db)
	deadLetters := postgres.NewDeadLetterRepo(db)
	activity := postgres.NewActivityRepo(db)

	rpcOpts := []rpc.Option{
		rpc.WithRetries(cfg.RPC.Retries),
		rpc.WithTimeout(cfg.RPC.Timeout),
	}
	if cfg.RPC.RPS > 0 {
		rpcOpts = append(rpcOpts, rpc.WithLimiter(ratelimit.NewLimiter(cfg.RPC.RPS, cfg.RPC.Burst, "base_rpc")))
	}
	client := rpc.NewClient(cfg.RPC.Endpoints(), logger, rpcOpts...)

	worker := ingest.New(client, ingest.Stores{
		DB:             db,
		Cursors:        cursors,
		DeadLetters:    deadLetters,
		Transactions:   postgres.NewTransactionRepo(db),
		TokenTransfers: postgres.NewTokenTransferRepo(db),
		AddressStats:   postgres.NewAddressStatRepo(db),
		Edges:          postgres.NewEdgeRepo(db),
	}, ingest.Config{
		Confirmations:      cfg.Ingest.Confirmations,
		LogChunkSize:       cfg.Ingest.LogChunkSize,
		StartBlock:         cfg.Ingest.StartBlock,
		IdleInterval:       cfg.Ingest.IdleInterval,
		ErrorDelay:         cfg.Ingest.ErrorDelay,
		MaxStorageFailures: cfg.Ingest.MaxStorageFailures,
		ReplayBatchSize:    cfg.Ingest.ReplayBatchSize,
		ReplayInterval:     cfg.Ingest.ReplayInterval,
	}, logger)

	presets, err := loadPresets(cfg.Alert.PresetsFile)
	if err != nil {
		return fmt.Errorf("load threshold presets: %w", err)
	}
	thresholds := alert.NewThresholds(postgres.NewThresholdRepo(db), presets, cfg.Alert.ThresholdCacheTTL)
	generator := alert.NewGenerator(activity, bridgeAddresses(cfg.Alert))

	channels, closers, err := buildNotifierChannels(ctx, cfg, logger)
	for _, closeFn := range closers {
		defer closeFn()
	}
	if err != nil {
		return err
	}
	var alertOpts []alert.Option
	if len(channels) > 0 {
		alertOpts = append(alertOpts, alert.WithNotifier(
			alert.NewMultiNotifier(model.Severity(cfg.Notify.MinSeverity), logger, channels...),
		))
	}
	alertService := alert.NewService(postgres.NewAlertRepo(db), thresholds, generator, logger, alertOpts...)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runHealthServer(gCtx, cfg.Server.HealthPort, logger)
	})

	if cfg.Server.AdminPort != 0 {
		server := admin.NewServer(alertService, ingest.NewDeadLetterService(worker, db, deadLetters), cursors, logger,
			admin.WithActivitySummarizer(activity))
		limiter := admin.NewRateLimitMiddleware(logger)
		handler := admin.AuditMiddleware(logger, limiter.Wrap(server.Handler()))
		g.Go(func() error {
			return runAdminServer(gCtx, cfg.Server.AdminPort, handler, logger)
		})
	}

	g.Go(func() error {
		if cfg.Ingest.ReplayMode {
			return worker.RunReplay(gCtx)
		}
		return worker.Run(gCtx)
	})

	scheduler, err := startSweepCron(gCtx, cfg.Alert.SweepSchedule, alertService, logger.With("component", "cron"))
	if err != nil {
		cancel()
		_ = g.Wait()
		return err
	}
	if scheduler != nil {
		defer func() { <-scheduler.Stop().Done() }()
	}

	startDBPoolStatsPump(gCtx, db.DB, cfg.DB.PoolStatsIntervalMS, logger)

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runHealthServer(ctx context.Context, port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: healthHeaderTimeout,
	}
	return serve(ctx, server, "health", logger)
}

func runAdminServer(ctx context.Context, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  adminReadTimeout,
		WriteTimeout: adminWriteTimeout,
	}
	return serve(ctx, server, "admin", logger)
}

// serve runs server until ctx is done, then shuts it down.
func serve(ctx context.Context, server *http.Server, name string, logger *slog.Logger) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn(name+" server shutdown error", "error", err)
		}
	}()

	logger.Info(name+" server started", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
