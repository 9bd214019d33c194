package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultMaxLen bounds the alert stream when no length is configured.
const DefaultMaxLen = 10_000

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// AlertStream appends newly persisted alerts to a Redis stream. Trimming is
// approximate so XADD stays O(1).
type AlertStream struct {
	client streamAdder
	closer func() error
	stream string
	maxLen int64
	newID  func() string
	now    func() time.Time
}

// NewAlertStream connects to url and verifies the server is reachable.
func NewAlertStream(ctx context.Context, url, stream string, maxLen int64) (*AlertStream, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	s := newAlertStream(client, stream, maxLen)
	s.closer = client.Close
	return s, nil
}

func newAlertStream(client streamAdder, stream string, maxLen int64) *AlertStream {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &AlertStream{
		client: client,
		closer: func() error { return nil },
		stream: stream,
		maxLen: maxLen,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Publish appends a and returns the stream entry id.
func (s *AlertStream) Publish(ctx context.Context, a model.Alert) (string, error) {
	args, err := s.addArgs(a)
	if err != nil {
		return "", err
	}
	id, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return id, nil
}

func (s *AlertStream) addArgs(a model.Alert) (*redis.XAddArgs, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal alert %d: %w", a.ID, err)
	}
	return &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_id":     s.newID(),
			"alert_id":     strconv.FormatInt(a.ID, 10),
			"type":         string(a.Type),
			"severity":     string(a.Severity),
			"address":      a.Address,
			"fingerprint":  a.Fingerprint,
			"published_at": s.now().UTC().Format(time.RFC3339Nano),
			"payload":      string(payload),
		},
	}, nil
}

func (s *AlertStream) Close() error {
	return s.closer()
}
