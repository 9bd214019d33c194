package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
)

// Notifier pushes a newly persisted alert to an external channel.
type Notifier interface {
	Notify(ctx context.Context, a model.Alert) error
}

// Publisher appends an alert to a durable stream and returns the entry id.
type Publisher interface {
	Publish(ctx context.Context, a model.Alert) (string, error)
}

// MultiNotifier fans out alerts at or above a minimum severity to every channel.
type MultiNotifier struct {
	channels    []Notifier
	minSeverity model.Severity
	logger      *slog.Logger
}

func NewMultiNotifier(minSeverity model.Severity, logger *slog.Logger, channels ...Notifier) *MultiNotifier {
	return &MultiNotifier{
		channels:    channels,
		minSeverity: minSeverity,
		logger:      logger.With("component", "notifier"),
	}
}

// Len returns the number of configured channels.
func (m *MultiNotifier) Len() int {
	return len(m.channels)
}

// Notify sends a to every channel and returns the first failure. Alerts
// below the minimum severity are dropped.
func (m *MultiNotifier) Notify(ctx context.Context, a model.Alert) error {
	if a.Severity.Rank() < m.minSeverity.Rank() {
		return nil
	}

	var firstErr error
	for _, ch := range m.channels {
		name := channelName(ch)
		if err := ch.Notify(ctx, a); err != nil {
			m.logger.Warn("alert notification failed",
				"channel", name,
				"alert_id", a.ID,
				"type", a.Type,
				"error", err,
			)
			metrics.AlertsSendErrors.WithLabelValues(name).Inc()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.AlertsSentTotal.WithLabelValues(name, string(a.Type)).Inc()
	}
	return firstErr
}

func channelName(n Notifier) string {
	switch n.(type) {
	case *SlackNotifier:
		return "slack"
	case *WebhookNotifier:
		return "webhook"
	case *StreamNotifier:
		return "stream"
	default:
		return "unknown"
	}
}

// SlackNotifier posts alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, a model.Alert) error {
	emoji := ":warning:"
	if a.Severity == model.SeverityHigh {
		emoji = ":rotating_light:"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *[%s]* %s (%s, confidence %.2f)",
		emoji, a.Type, a.Address, a.Severity, a.Confidence)
	keys := make([]string, 0, len(a.Evidence))
	for k := range a.Evidence {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- *%s*: %v", k, a.Evidence[k])
	}

	body, err := json.Marshal(map[string]string{"text": b.String()})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	return postJSON(ctx, s.client, s.webhookURL, body, "slack")
}

// WebhookNotifier posts the alert as JSON to a generic endpoint.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) Notify(ctx context.Context, a model.Alert) error {
	body, err := json.Marshal(map[string]any{
		"alert": a,
		"time":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	return postJSON(ctx, w.client, w.url, body, "webhook")
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte, channel string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s alert: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", channel, resp.StatusCode)
	}
	return nil
}

// StreamNotifier appends alerts to a stream for downstream consumers.
type StreamNotifier struct {
	pub Publisher
}

func NewStreamNotifier(pub Publisher) *StreamNotifier {
	return &StreamNotifier{pub: pub}
}

func (s *StreamNotifier) Notify(ctx context.Context, a model.Alert) error {
	if _, err := s.pub.Publish(ctx, a); err != nil {
		return fmt.Errorf("publish alert %d: %w", a.ID, err)
	}
	return nil
}
