package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/0xdefence/basetrace/internal/chain/ratelimit"
	"github.com/0xdefence/basetrace/internal/metrics"
)

const (
	defaultRetries = 3
	backoffBase    = 600 * time.Millisecond
	backoffMax     = 5 * time.Second
)

// CallMeta identifies which endpoint served a call and on which attempt.
type CallMeta struct {
	Endpoint string
	Attempt  int
}

// ExhaustedError is returned once every endpoint has failed every attempt.
type ExhaustedError struct {
	Method    string
	Endpoints int
	Attempts  int
	Last      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: rpc exhausted after %d attempts across %d endpoints: %v", e.Method, e.Attempts, e.Endpoints, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// IsExhausted reports whether err carries an ExhaustedError.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}

// DefaultBackoff is min(5s, 0.6s * 2^attempt).
func DefaultBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 10 {
		return backoffMax
	}
	d := backoffBase << uint(attempt)
	if d > backoffMax {
		return backoffMax
	}
	return d
}

// Client calls a fixed, ordered list of JSON-RPC endpoints. Each endpoint is
// tried retries times with backoff before falling back to the next one.
type Client struct {
	httpClient *http.Client
	endpoints  []string
	retries    int
	backoff    func(attempt int) time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	limiter    *ratelimit.Limiter
	requestID  atomic.Int64
	logger     *slog.Logger
}

type Option func(*Client)

func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
	}
}

func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = fn }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLimiter throttles every HTTP attempt through l.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func NewClient(endpoints []string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoints:  endpoints,
		retries:    defaultRetries,
		backoff:    DefaultBackoff,
		sleep:      sleepContext,
		logger:     logger.With("component", "rpc"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

// Call runs method against the endpoints in order and returns the first
// successful result.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, CallMeta, error) {
	if len(c.endpoints) == 0 {
		return nil, CallMeta{}, fmt.Errorf("%s: no rpc endpoints configured", method)
	}

	total := len(c.endpoints) * c.retries
	tried := 0
	var lastErr error
	for i, endpoint := range c.endpoints {
		for attempt := 0; attempt < c.retries; attempt++ {
			tried++
			result, err := c.call(ctx, endpoint, method, params)
			ratelimit.RecordRPCCall(method, err)
			if err == nil {
				if i > 0 {
					metrics.RPCEndpointFallbacks.WithLabelValues(method).Inc()
				}
				return result, CallMeta{Endpoint: endpoint, Attempt: attempt}, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, CallMeta{}, fmt.Errorf("%s: %w", method, ctxErr)
			}
			lastErr = err
			c.logger.Debug("rpc attempt failed",
				"method", method,
				"endpoint", endpoint,
				"attempt", attempt,
				"error", err,
			)
			if tried < total {
				if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
					return nil, CallMeta{}, fmt.Errorf("%s: %w", method, err)
				}
			}
		}
		if i < len(c.endpoints)-1 {
			c.logger.Warn("rpc endpoint exhausted, falling back",
				"method", method,
				"endpoint", endpoint,
				"next", c.endpoints[i+1],
				"error", lastErr,
			)
		}
	}
	return nil, CallMeta{}, &ExhaustedError{
		Method:    method,
		Endpoints: len(c.endpoints),
		Attempts:  tried,
		Last:      lastErr,
	}
}

func (c *Client) call(ctx context.Context, endpoint, method string, params []interface{}) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if params == nil {
		params = []interface{}{}
	}
	req := Request{
		JSONRPC: "2.0",
		ID:      int(c.requestID.Add(1)),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, truncate(string(respBody), 256))
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
