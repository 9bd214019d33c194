package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/0xdefence/basetrace/internal/alert"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/pipeline/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock services ---

type mockAlertService struct {
	recentFunc          func(ctx context.Context, limit int, status *model.AlertStatus) ([]model.Alert, error)
	byAddressFunc       func(ctx context.Context, address string, limit int, status *model.AlertStatus) ([]model.Alert, error)
	queueFunc           func(ctx context.Context, limit int, status model.AlertStatus) ([]model.Alert, error)
	ackFunc             func(ctx context.Context, id int64, assignee *string) (*model.Alert, error)
	resolveFunc         func(ctx context.Context, id int64, assignee *string) (*model.Alert, error)
	thresholdsFunc      func(ctx context.Context) (model.ThresholdSet, error)
	updateThresholdFunc func(ctx context.Context, rule string, patch model.ThresholdPatch) (model.ThresholdSet, error)
	applyPresetFunc     func(ctx context.Context, name string) (model.ThresholdSet, error)
	queueSummaryFunc    func(ctx context.Context) (alert.QueueSummary, error)
}

func (m *mockAlertService) Recent(ctx context.Context, limit int, status *model.AlertStatus) ([]model.Alert, error) {
	return m.recentFunc(ctx, limit, status)
}

func (m *mockAlertService) ByAddress(ctx context.Context, address string, limit int, status *model.AlertStatus) ([]model.Alert, error) {
	return m.byAddressFunc(ctx, address, limit, status)
}

func (m *mockAlertService) Queue(ctx context.Context, limit int, status model.AlertStatus) ([]model.Alert, error) {
	return m.queueFunc(ctx, limit, status)
}

func (m *mockAlertService) Ack(ctx context.Context, id int64, assignee *string) (*model.Alert, error) {
	return m.ackFunc(ctx, id, assignee)
}

func (m *mockAlertService) Resolve(ctx context.Context, id int64, assignee *string) (*model.Alert, error) {
	return m.resolveFunc(ctx, id, assignee)
}

func (m *mockAlertService) Thresholds(ctx context.Context) (model.ThresholdSet, error) {
	return m.thresholdsFunc(ctx)
}

func (m *mockAlertService) UpdateThreshold(ctx context.Context, rule string, patch model.ThresholdPatch) (model.ThresholdSet, error) {
	return m.updateThresholdFunc(ctx, rule, patch)
}

func (m *mockAlertService) ApplyPreset(ctx context.Context, name string) (model.ThresholdSet, error) {
	return m.applyPresetFunc(ctx, name)
}

func (m *mockAlertService) QueueSummary(ctx context.Context) (alert.QueueSummary, error) {
	return m.queueSummaryFunc(ctx)
}

type mockDeadLetterService struct {
	listFunc    func(ctx context.Context, limit int, status *model.DeadLetterStatus) ([]model.DeadLetter, error)
	retryFunc   func(ctx context.Context, id int64) (*model.DeadLetter, error)
	resolveFunc func(ctx context.Context, id int64) (*model.DeadLetter, error)
	countsFunc  func(ctx context.Context) (map[model.DeadLetterStatus]int64, error)
}

func (m *mockDeadLetterService) List(ctx context.Context, limit int, status *model.DeadLetterStatus) ([]model.DeadLetter, error) {
	return m.listFunc(ctx, limit, status)
}

func (m *mockDeadLetterService) Retry(ctx context.Context, id int64) (*model.DeadLetter, error) {
	return m.retryFunc(ctx, id)
}

func (m *mockDeadLetterService) Resolve(ctx context.Context, id int64) (*model.DeadLetter, error) {
	return m.resolveFunc(ctx, id)
}

func (m *mockDeadLetterService) Counts(ctx context.Context) (map[model.DeadLetterStatus]int64, error) {
	return m.countsFunc(ctx)
}

type mockStateReader struct {
	rows []model.IngestState
	err  error
}

func (m *mockStateReader) All(context.Context) ([]model.IngestState, error) {
	return m.rows, m.err
}

type mockActivity struct {
	summary model.ActivitySummary
}

func (m *mockActivity) Summary(context.Context, time.Time) (model.ActivitySummary, error) {
	return m.summary, nil
}

// --- Helper ---

func newTestServer(alerts *mockAlertService, failures *mockDeadLetterService, state *mockStateReader, opts ...ServerOption) http.Handler {
	if alerts == nil {
		alerts = &mockAlertService{}
	}
	if failures == nil {
		failures = &mockDeadLetterService{}
	}
	if state == nil {
		state = &mockStateReader{}
	}
	return NewServer(alerts, failures, state, discardLogger(), opts...).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

// --- Tests: alerts ---

func TestHandleRecentAlerts(t *testing.T) {
	var gotLimit int
	var gotStatus *model.AlertStatus
	h := newTestServer(&mockAlertService{
		recentFunc: func(_ context.Context, limit int, status *model.AlertStatus) ([]model.Alert, error) {
			gotLimit, gotStatus = limit, status
			return []model.Alert{{ID: 1, Type: model.RuleFanOutSpike}}, nil
		},
	}, nil, nil)

	rec, body := do(t, h, http.MethodGet, "/alerts/recent?limit=5&status=NEW", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)
	require.NotNil(t, gotStatus)
	assert.Equal(t, model.AlertStatusNew, *gotStatus)
	assert.Len(t, body["alerts"], 1)
	assert.Equal(t, "new", body["status"])
}

func TestHandleRecentAlerts_BadLimit(t *testing.T) {
	rec, _ := do(t, newTestServer(nil, nil, nil), http.MethodGet, "/alerts/recent?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRecentAlerts_InvalidStatus(t *testing.T) {
	h := newTestServer(&mockAlertService{
		recentFunc: func(_ context.Context, _ int, status *model.AlertStatus) ([]model.Alert, error) {
			return nil, fmt.Errorf("%w: %q", alert.ErrInvalidStatus, *status)
		},
	}, nil, nil)

	rec, body := do(t, h, http.MethodGet, "/alerts/recent?status=closed", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "invalid alert status")
}

func TestHandleAlertQueue_DefaultsToNew(t *testing.T) {
	var got model.AlertStatus
	h := newTestServer(&mockAlertService{
		queueFunc: func(_ context.Context, limit int, status model.AlertStatus) ([]model.Alert, error) {
			got = status
			assert.Equal(t, alert.DefaultLimit, limit)
			return []model.Alert{}, nil
		},
	}, nil, nil)

	rec, _ := do(t, h, http.MethodGet, "/alerts/queue", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AlertStatusNew, got)
}

func TestHandleAlertsByAddress(t *testing.T) {
	h := newTestServer(&mockAlertService{
		byAddressFunc: func(_ context.Context, address string, _ int, status *model.AlertStatus) ([]model.Alert, error) {
			assert.Equal(t, "0xabc", address)
			assert.Nil(t, status)
			return []model.Alert{{ID: 2, Address: address}}, nil
		},
	}, nil, nil)

	rec, body := do(t, h, http.MethodGet, "/alerts/0xABC", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0xabc", body["address"])
}

func TestHandleAckAlert(t *testing.T) {
	var gotAssignee *string
	h := newTestServer(&mockAlertService{
		ackFunc: func(_ context.Context, id int64, assignee *string) (*model.Alert, error) {
			gotAssignee = assignee
			return &model.Alert{ID: id, Status: model.AlertStatusAck, Assignee: assignee}, nil
		},
	}, nil, nil)

	rec, body := do(t, h, http.MethodPost, "/alerts/12/ack?assignee=ui", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotAssignee)
	assert.Equal(t, "ui", *gotAssignee)
	assert.Equal(t, "ack", body["status"])
}

func TestHandleResolveAlert_NotFound(t *testing.T) {
	h := newTestServer(&mockAlertService{
		resolveFunc: func(_ context.Context, id int64, assignee *string) (*model.Alert, error) {
			assert.Nil(t, assignee)
			return nil, fmt.Errorf("%w: %d", alert.ErrNotFound, id)
		},
	}, nil, nil)

	rec, _ := do(t, h, http.MethodPost, "/alerts/404/resolve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAckAlert_InvalidID(t *testing.T) {
	rec, _ := do(t, newTestServer(nil, nil, nil), http.MethodPost, "/alerts/abc/ack", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUpdateThreshold(t *testing.T) {
	var gotPatch model.ThresholdPatch
	h := newTestServer(&mockAlertService{
		updateThresholdFunc: func(_ context.Context, rule string, patch model.ThresholdPatch) (model.ThresholdSet, error) {
			assert.Equal(t, "fan_out_spike", rule)
			gotPatch = patch
			return alert.DefaultThresholds(), nil
		},
	}, nil, nil)

	rec, body := do(t, h, http.MethodPatch, "/alerts/thresholds/fan_out_spike", `{"min_ratio": 4.5, "enabled": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotPatch.MinRatio)
	assert.Equal(t, 4.5, *gotPatch.MinRatio)
	require.NotNil(t, gotPatch.Enabled)
	assert.False(t, *gotPatch.Enabled)
	assert.Nil(t, gotPatch.MinCount)
	assert.Contains(t, body, "fan_out_spike")
}

func TestHandleUpdateThreshold_Errors(t *testing.T) {
	h := newTestServer(&mockAlertService{
		updateThresholdFunc: func(_ context.Context, rule string, _ model.ThresholdPatch) (model.ThresholdSet, error) {
			return nil, fmt.Errorf("%w: %q", alert.ErrUnknownRule, rule)
		},
	}, nil, nil)

	rec, _ := do(t, h, http.MethodPatch, "/alerts/thresholds/nope", `{"min_count": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, "/alerts/thresholds/fan_out_spike", `{"min_count": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, "/alerts/thresholds/fan_out_spike", `{"unknown": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetThresholds_InternalError(t *testing.T) {
	h := newTestServer(&mockAlertService{
		thresholdsFunc: func(context.Context) (model.ThresholdSet, error) {
			return nil, errors.New("connection refused")
		},
	}, nil, nil)

	rec, body := do(t, h, http.MethodGet, "/alerts/thresholds", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["error"])
}

func TestHandleApplyPreset(t *testing.T) {
	h := newTestServer(&mockAlertService{
		applyPresetFunc: func(_ context.Context, name string) (model.ThresholdSet, error) {
			if name != "conservative" {
				return nil, fmt.Errorf("%w: %q", alert.ErrUnknownPreset, name)
			}
			return alert.DefaultPresets()[name], nil
		},
	}, nil, nil)

	rec, body := do(t, h, http.MethodPost, "/runbook/threshold-presets/conservative", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "conservative", body["preset"])

	rec, _ = do(t, h, http.MethodPost, "/runbook/threshold-presets/loud", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Tests: runbook ---

func TestHandleIngestRunbook(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	h := newTestServer(nil, nil, &mockStateReader{rows: []model.IngestState{
		{Key: model.CursorKeyTxBlock, Value: "990", UpdatedAt: ts},
		{Key: model.CursorKeyLogBlock, Value: "900", UpdatedAt: ts.Add(time.Second)},
		{Key: model.StateKeyChainHead, Value: "1000", UpdatedAt: ts},
		{Key: model.StateKeyCurrentRPC, Value: "https://mainnet.base.org", UpdatedAt: ts},
	}})

	rec, body := do(t, h, http.MethodGet, "/runbook/ingest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10.0, body["ingest_lag_blocks"])
	assert.Equal(t, 100.0, body["log_lag_blocks"])
	state := body["state"].(map[string]any)
	assert.Equal(t, "https://mainnet.base.org", state["current_rpc"])
	assert.Equal(t, "2024-03-01T12:00:01Z", body["updated_at"])
}

func TestBuildIngestRunbook_MissingHead(t *testing.T) {
	rb := buildIngestRunbook([]model.IngestState{{Key: model.CursorKeyTxBlock, Value: "5"}})
	assert.Nil(t, rb.IngestLagBlocks)
	assert.Nil(t, rb.LogLagBlocks)
}

func TestHandleAlertsRunbook(t *testing.T) {
	h := newTestServer(&mockAlertService{
		queueSummaryFunc: func(context.Context) (alert.QueueSummary, error) {
			return alert.QueueSummary{
				Counts:          map[model.AlertStatus]int64{model.AlertStatusNew: 60},
				BacklogPressure: alert.BacklogHigh,
			}, nil
		},
	}, nil, nil, WithActivitySummarizer(&mockActivity{summary: model.ActivitySummary{Transactions: 7}}))

	rec, body := do(t, h, http.MethodGet, "/runbook/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "high", body["backlog_pressure"])
	activity := body["activity_24h"].(map[string]any)
	assert.Equal(t, 7.0, activity["tx_24h"])
}

func TestHandleListFailures(t *testing.T) {
	h := newTestServer(nil, &mockDeadLetterService{
		listFunc: func(_ context.Context, limit int, status *model.DeadLetterStatus) ([]model.DeadLetter, error) {
			assert.Equal(t, 100, limit)
			require.NotNil(t, status)
			assert.Equal(t, model.DeadLetterOpen, *status)
			return []model.DeadLetter{{ID: 3, Stage: model.DeadLetterStageLogs}}, nil
		},
		countsFunc: func(context.Context) (map[model.DeadLetterStatus]int64, error) {
			return map[model.DeadLetterStatus]int64{model.DeadLetterOpen: 1}, nil
		},
	}, nil)

	rec, body := do(t, h, http.MethodGet, "/runbook/failures?status=open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["failures"], 1)

	rec, _ = do(t, h, http.MethodGet, "/runbook/failures?status=stuck", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRetryFailure(t *testing.T) {
	h := newTestServer(nil, &mockDeadLetterService{
		retryFunc: func(_ context.Context, id int64) (*model.DeadLetter, error) {
			if id == 9 {
				return nil, fmt.Errorf("%w: %d", ingest.ErrDeadLetterNotFound, id)
			}
			return &model.DeadLetter{ID: id, Status: model.DeadLetterResolved}, nil
		},
	}, nil)

	rec, body := do(t, h, http.MethodPost, "/runbook/failures/3/retry", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "resolved", body["status"])

	rec, _ = do(t, h, http.MethodPost, "/runbook/failures/9/retry", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleResolveFailure(t *testing.T) {
	h := newTestServer(nil, &mockDeadLetterService{
		resolveFunc: func(_ context.Context, id int64) (*model.DeadLetter, error) {
			return &model.DeadLetter{ID: id, Status: model.DeadLetterResolved}, nil
		},
	}, nil)

	rec, _ := do(t, h, http.MethodPost, "/runbook/failures/3/resolve", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/runbook/failures/0/resolve", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
