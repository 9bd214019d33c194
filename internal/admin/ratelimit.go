package admin

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/0xdefence/basetrace/internal/cache"
	"github.com/0xdefence/basetrace/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	// idleClientTTL bounds how long a client's bucket is remembered.
	idleClientTTL = 10 * time.Minute
	// maxTrackedClients caps the limiter table; the least recently seen
	// client is dropped first.
	maxTrackedClients = 4096
)

// routeLimit is the token bucket applied to one class of admin routes.
type routeLimit struct {
	name   string
	method string // empty matches any method
	prefix string
	rps    rate.Limit
	burst  int
}

func (l routeLimit) matches(method, path string) bool {
	if l.method != "" && !strings.EqualFold(l.method, method) {
		return false
	}
	return strings.HasPrefix(path, l.prefix)
}

// retryAfter is the whole number of seconds until one token refills.
func (l routeLimit) retryAfter() string {
	if l.rps <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Ceil(1 / float64(l.rps))))
}

// defaultRouteLimits are matched in order; the last entry catches everything.
var defaultRouteLimits = []routeLimit{
	{name: "failure_actions", method: http.MethodPost, prefix: "/runbook/failures/", rps: rate.Limit(10.0 / 60), burst: 3},
	{name: "threshold_presets", method: http.MethodPost, prefix: "/runbook/threshold-presets/", rps: rate.Limit(1.0 / 10), burst: 2},
	{name: "threshold_patch", method: http.MethodPatch, prefix: "/alerts/thresholds/", rps: rate.Limit(10.0 / 60), burst: 3},
	{name: "alerts_recent", method: http.MethodGet, prefix: "/alerts/recent", rps: 1, burst: 5},
	{name: "default", rps: 5, burst: 20},
}

// RateLimitMiddleware keeps one token bucket per client and route class.
// Re-running a dead letter or regenerating recent alerts costs RPC and
// database work, so those routes get tighter buckets than plain reads.
type RateLimitMiddleware struct {
	routes  []routeLimit
	clients *cache.LRU[string, *rate.Limiter]
	logger  *slog.Logger
}

func NewRateLimitMiddleware(logger *slog.Logger) *RateLimitMiddleware {
	return newRateLimitMiddleware(logger, defaultRouteLimits, maxTrackedClients)
}

func newRateLimitMiddleware(logger *slog.Logger, routes []routeLimit, capacity int) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		routes:  routes,
		clients: cache.NewLRU[string, *rate.Limiter](capacity, idleClientTTL),
		logger:  logger.With("component", "admin_ratelimit"),
	}
}

// LimiterCount returns the number of tracked client buckets.
func (rl *RateLimitMiddleware) LimiterCount() int {
	return rl.clients.Len()
}

func (rl *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := rl.route(r.Method, r.URL.Path)
		clientIP := extractClientIP(r)

		limiter, _ := rl.clients.GetOrLoad(route.name+"|"+clientIP, func() (*rate.Limiter, error) {
			return rate.NewLimiter(route.rps, route.burst), nil
		})
		if !limiter.Allow() {
			metrics.AdminRateLimited.WithLabelValues(route.name).Inc()
			rl.logger.Warn("admin API rate limit exceeded",
				"route", route.name,
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", clientIP,
			)
			w.Header().Set("Retry-After", route.retryAfter())
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimitMiddleware) route(method, path string) routeLimit {
	for _, l := range rl.routes {
		if l.matches(method, path) {
			return l
		}
	}
	return routeLimit{name: "fallback", rps: 5, burst: 20}
}

// extractClientIP prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the connection's remote host.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
