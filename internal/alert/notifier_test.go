package alert

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert(sev model.Severity) model.Alert {
	return model.Alert{
		ID:         7,
		Type:       model.RuleFanInSpike,
		Address:    "0xabc",
		Severity:   sev,
		Confidence: 0.91,
		Evidence: model.Evidence{
			"now_inbound":  90,
			"prev_inbound": 9,
			"window":       model.WindowDayOverDay,
		},
		Status:      model.AlertStatusNew,
		CreatedAt:   asOf,
		Fingerprint: "fp",
	}
}

func countingServer(t *testing.T, status int, hits *atomic.Int32, body *[]byte) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if body != nil {
			b, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			*body = b
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMultiNotifier_FansOut(t *testing.T) {
	var slackHits, webhookHits atomic.Int32
	slack := countingServer(t, http.StatusOK, &slackHits, nil)
	webhook := countingServer(t, http.StatusOK, &webhookHits, nil)

	multi := NewMultiNotifier(model.SeverityMedium, testLogger(),
		NewSlackNotifier(slack.URL), NewWebhookNotifier(webhook.URL))

	require.NoError(t, multi.Notify(context.Background(), testAlert(model.SeverityHigh)))
	assert.Equal(t, int32(1), slackHits.Load())
	assert.Equal(t, int32(1), webhookHits.Load())
	assert.Equal(t, 2, multi.Len())
}

func TestMultiNotifier_MinSeverity(t *testing.T) {
	var hits atomic.Int32
	srv := countingServer(t, http.StatusOK, &hits, nil)
	multi := NewMultiNotifier(model.SeverityHigh, testLogger(), NewWebhookNotifier(srv.URL))

	require.NoError(t, multi.Notify(context.Background(), testAlert(model.SeverityMedium)))
	assert.Equal(t, int32(0), hits.Load())

	require.NoError(t, multi.Notify(context.Background(), testAlert(model.SeverityHigh)))
	assert.Equal(t, int32(1), hits.Load())
}

func TestMultiNotifier_PartialFailure(t *testing.T) {
	var failHits, goodHits atomic.Int32
	fail := countingServer(t, http.StatusInternalServerError, &failHits, nil)
	good := countingServer(t, http.StatusOK, &goodHits, nil)

	multi := NewMultiNotifier(model.SeverityLow, testLogger(),
		NewWebhookNotifier(fail.URL), NewWebhookNotifier(good.URL))

	err := multi.Notify(context.Background(), testAlert(model.SeverityMedium))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook returned status 500")
	assert.Equal(t, int32(1), goodHits.Load())
}

func TestSlackNotifier_Payload(t *testing.T) {
	var hits atomic.Int32
	var body []byte
	srv := countingServer(t, http.StatusOK, &hits, &body)

	require.NoError(t, NewSlackNotifier(srv.URL).Notify(context.Background(), testAlert(model.SeverityHigh)))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload))
	text := payload["text"]
	assert.True(t, strings.HasPrefix(text, ":rotating_light: *[fan_in_spike]* 0xabc"), text)
	assert.Contains(t, text, "confidence 0.91")
	assert.Less(t, strings.Index(text, "now_inbound"), strings.Index(text, "prev_inbound"))

	require.NoError(t, NewSlackNotifier(srv.URL).Notify(context.Background(), testAlert(model.SeverityMedium)))
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.True(t, strings.HasPrefix(payload["text"], ":warning:"))
}

func TestWebhookNotifier_Payload(t *testing.T) {
	var hits atomic.Int32
	var body []byte
	srv := countingServer(t, http.StatusOK, &hits, &body)

	require.NoError(t, NewWebhookNotifier(srv.URL).Notify(context.Background(), testAlert(model.SeverityHigh)))

	var payload struct {
		Alert model.Alert `json:"alert"`
		Time  string      `json:"time"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, int64(7), payload.Alert.ID)
	assert.Equal(t, "0xabc", payload.Alert.Address)
	assert.NotEmpty(t, payload.Time)
}

type fakePublisher struct {
	got []model.Alert
	err error
}

func (f *fakePublisher) Publish(_ context.Context, a model.Alert) (string, error) {
	f.got = append(f.got, a)
	return "1-0", f.err
}

func TestStreamNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := NewStreamNotifier(pub)
	require.NoError(t, n.Notify(context.Background(), testAlert(model.SeverityHigh)))
	assert.Len(t, pub.got, 1)
	assert.Equal(t, "stream", channelName(n))

	pub.err = errors.New("connection refused")
	err := n.Notify(context.Background(), testAlert(model.SeverityHigh))
	assert.ErrorContains(t, err, "publish alert 7")
}
