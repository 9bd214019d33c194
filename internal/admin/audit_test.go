package admin

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAuditMiddleware_LogsMutatingRequests(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/alerts/12/ack?assignee=oncall", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}

	var entry map[string]any
	if err := json.Unmarshal(logBuf.Bytes(), &entry); err != nil {
		t.Fatalf("decode audit log: %v", err)
	}
	if entry["msg"] != "admin action" {
		t.Errorf("unexpected message %v", entry["msg"])
	}
	if entry["path"] != "/alerts/12/ack" || entry["method"] != "POST" {
		t.Errorf("unexpected path/method %v %v", entry["path"], entry["method"])
	}
	if entry["actor"] != "oncall" {
		t.Errorf("expected assignee as actor, got %v", entry["actor"])
	}
}

func TestAuditMiddleware_KeepsCallerRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPatch, "/alerts/thresholds/fan_in_spike", strings.NewReader(`{"min_count":10}`))
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("expected req-42, got %q", got)
	}
	if !strings.Contains(logBuf.String(), `min_count`) {
		t.Error("expected body summary in audit log")
	}
}

func TestAuditMiddleware_SkipsGETRequests(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/alerts/queue", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if logBuf.Len() > 0 {
		t.Error("expected no audit log for GET request")
	}
}

func TestAuditMiddleware_TruncatesLargeBody(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var seen int
	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		seen = buf.Len()
	}))

	largeBody := strings.Repeat("x", 2000)
	req := httptest.NewRequest(http.MethodPost, "/runbook/failures/1/retry", strings.NewReader(largeBody))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(logBuf.String(), "truncated") {
		t.Error("expected truncation indicator in audit log for large body")
	}
	if seen != len(largeBody) {
		t.Errorf("downstream handler saw %d of %d bytes", seen, len(largeBody))
	}
}

func TestAuditMiddleware_CapturesResponseStatus(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodPost, "/runbook/failures/99/resolve", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(logBuf.String(), `"status":404`) {
		t.Error("expected response status 404 in audit log")
	}
}

func TestAuditMiddleware_BasicAuthActor(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := AuditMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodPost, "/runbook/threshold-presets/conservative?assignee=ignored", nil)
	req.SetBasicAuth("ops", "secret")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !strings.Contains(logBuf.String(), `"actor":"ops"`) {
		t.Errorf("expected basic auth user as actor, got %s", logBuf.String())
	}
}
