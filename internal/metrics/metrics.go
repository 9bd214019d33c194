package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "basetrace"

var (
	// Ingest
	IngestBlocksWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "blocks_written_total",
		Help:      "Total blocks committed by the transaction stream",
	})

	IngestTransactionsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "transactions_written_total",
		Help:      "Total new transaction rows inserted",
	})

	IngestTransfersWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "transfers_written_total",
		Help:      "Total new token transfer rows inserted",
	})

	IngestTransfersUndecodable = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "transfers_undecodable_total",
		Help:      "Transfer-topic logs skipped because they did not have three topics",
	})

	IngestLogWindows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "log_windows_total",
		Help:      "Total log windows committed",
	})

	IngestLogBisections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "log_bisections_total",
		Help:      "Total log ranges split after a failed fetch",
	})

	IngestDeadLettersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "dead_letters_created_total",
		Help:      "Total single-block log ranges parked in the dead-letter table",
	})

	IngestCursorBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "cursor_block",
		Help:      "Last committed block per stream",
	}, []string{"stream"})

	IngestChainHead = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "chain_head",
		Help:      "Latest observed chain head",
	})

	IngestSafeHead = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "safe_head",
		Help:      "Chain head minus confirmations",
	})

	IngestCycleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "cycle_errors_total",
		Help:      "Total failed loop iterations by error kind",
	}, []string{"kind"})

	IngestCycleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "cycle_duration_seconds",
		Help:      "Loop iteration duration per stage",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"stage"})

	IngestStorageFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "consecutive_storage_failures",
		Help:      "Consecutive storage failures seen by the ingest loop",
	})

	// Replay
	ReplayAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "replay",
		Name:      "attempts_total",
		Help:      "Dead-letter replay attempts by result",
	}, []string{"result"})

	// RPC
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "calls_total",
		Help:      "Total RPC attempts by method and status",
	}, []string{"method", "status"})

	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Total times RPC calls waited for rate limiter",
	}, []string{"limiter"})

	RPCEndpointFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "endpoint_fallbacks_total",
		Help:      "Calls served by a fallback endpoint",
	}, []string{"method"})

	// Alerts
	AlertsGeneratedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "generated_total",
		Help:      "Alerts inserted by rule type",
	}, []string{"type"})

	AlertsSuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "suppressed_total",
		Help:      "Candidates dropped by the fingerprint cooldown",
	}, []string{"type"})

	AlertSweepLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of one alert generation sweep",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "sent_total",
		Help:      "Alert notifications delivered per channel",
	}, []string{"channel", "type"})

	AlertsSendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "alerts",
		Name:      "send_errors_total",
		Help:      "Alert notification failures per channel",
	}, []string{"channel"})

	ThresholdCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "threshold_hits_total",
		Help:      "Effective threshold lookups served from cache",
	})

	ThresholdCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "threshold_misses_total",
		Help:      "Effective threshold lookups that hit the database",
	})

	// Admin API
	AdminRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "admin",
		Name:      "requests_total",
		Help:      "Mutating admin requests by method and status code",
	}, []string{"method", "code"})

	AdminRateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "admin",
		Name:      "rate_limited_total",
		Help:      "Admin requests rejected by the per-client rate limiter",
	}, []string{"route"})

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "circuit_breaker",
		Name:      "state",
		Help:      "Breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"name"})

	// DB pool
	DBPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "postgres",
		Name:      "db_pool_open",
		Help:      "Open connections in the pool",
	})

	DBPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "postgres",
		Name:      "db_pool_in_use",
		Help:      "Connections currently in use",
	})

	DBPoolIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "postgres",
		Name:      "db_pool_idle",
		Help:      "Idle connections in the pool",
	})

	DBPoolWaitCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "postgres",
		Name:      "db_pool_wait_count",
		Help:      "Total connections waited for",
	})

	DBPoolWaitDurationSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "postgres",
		Name:      "db_pool_wait_duration_seconds",
		Help:      "Total time blocked waiting for a connection",
	})
)
