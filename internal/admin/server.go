package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/0xdefence/basetrace/internal/alert"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/pipeline/ingest"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// AlertService is the alert surface exposed over HTTP.
type AlertService interface {
	Recent(ctx context.Context, limit int, status *model.AlertStatus) ([]model.Alert, error)
	ByAddress(ctx context.Context, address string, limit int, status *model.AlertStatus) ([]model.Alert, error)
	Queue(ctx context.Context, limit int, status model.AlertStatus) ([]model.Alert, error)
	Ack(ctx context.Context, id int64, assignee *string) (*model.Alert, error)
	Resolve(ctx context.Context, id int64, assignee *string) (*model.Alert, error)
	Thresholds(ctx context.Context) (model.ThresholdSet, error)
	UpdateThreshold(ctx context.Context, rule string, patch model.ThresholdPatch) (model.ThresholdSet, error)
	ApplyPreset(ctx context.Context, name string) (model.ThresholdSet, error)
	QueueSummary(ctx context.Context) (alert.QueueSummary, error)
}

// DeadLetterService is the dead-letter surface exposed over HTTP.
type DeadLetterService interface {
	List(ctx context.Context, limit int, status *model.DeadLetterStatus) ([]model.DeadLetter, error)
	Retry(ctx context.Context, id int64) (*model.DeadLetter, error)
	Resolve(ctx context.Context, id int64) (*model.DeadLetter, error)
	Counts(ctx context.Context) (map[model.DeadLetterStatus]int64, error)
}

// IngestStateReader returns every cursor and diagnostic key.
type IngestStateReader interface {
	All(ctx context.Context) ([]model.IngestState, error)
}

// Server provides the HTTP API over the alert and ingest services.
type Server struct {
	alerts      AlertService
	deadLetters DeadLetterService
	state       IngestStateReader
	activity    ActivitySummarizer
	logger      *slog.Logger
}

// ServerOption configures optional dependencies for the admin server.
type ServerOption func(*Server)

// WithActivitySummarizer adds 24h activity counts to the alert runbook.
func WithActivitySummarizer(a ActivitySummarizer) ServerOption {
	return func(s *Server) { s.activity = a }
}

func NewServer(alerts AlertService, deadLetters DeadLetterService, state IngestStateReader, logger *slog.Logger, opts ...ServerOption) *Server {
	s := &Server{
		alerts:      alerts,
		deadLetters: deadLetters,
		state:       state,
		logger:      logger.With("component", "admin"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the admin API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /alerts/recent", s.handleRecentAlerts)
	mux.HandleFunc("GET /alerts/queue", s.handleAlertQueue)
	mux.HandleFunc("GET /alerts/thresholds", s.handleGetThresholds)
	mux.HandleFunc("PATCH /alerts/thresholds/{rule}", s.handleUpdateThreshold)
	mux.HandleFunc("GET /alerts/{address}", s.handleAlertsByAddress)
	mux.HandleFunc("POST /alerts/{id}/ack", s.handleAckAlert)
	mux.HandleFunc("POST /alerts/{id}/resolve", s.handleResolveAlert)

	mux.HandleFunc("POST /runbook/threshold-presets/{name}", s.handleApplyPreset)
	mux.HandleFunc("GET /runbook/ingest", s.handleIngestRunbook)
	mux.HandleFunc("GET /runbook/alerts", s.handleAlertsRunbook)
	mux.HandleFunc("GET /runbook/failures", s.handleListFailures)
	mux.HandleFunc("POST /runbook/failures/{id}/retry", s.handleRetryFailure)
	mux.HandleFunc("POST /runbook/failures/{id}/resolve", s.handleResolveFailure)
	return mux
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto HTTP statuses. Unexpected
// errors are logged and reported without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, alert.ErrInvalidStatus),
		errors.Is(err, alert.ErrUnknownRule),
		errors.Is(err, alert.ErrInvalidThreshold):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, alert.ErrNotFound),
		errors.Is(err, alert.ErrUnknownPreset),
		errors.Is(err, ingest.ErrDeadLetterNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("admin request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func queryLimit(r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func optionalAlertStatus(r *http.Request) *model.AlertStatus {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil
	}
	st := model.AlertStatus(strings.ToLower(raw))
	return &st
}

func optionalAssignee(r *http.Request) *string {
	if a := strings.TrimSpace(r.URL.Query().Get("assignee")); a != "" {
		return &a
	}
	return nil
}

func (s *Server) handleRecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r, alert.DefaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	status := optionalAlertStatus(r)
	alerts, err := s.alerts.Recent(r.Context(), limit, status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"limit": limit, "status": status, "alerts": alerts})
}

func (s *Server) handleAlertQueue(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r, alert.DefaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	status := model.AlertStatusNew
	if st := optionalAlertStatus(r); st != nil {
		status = *st
	}
	alerts, err := s.alerts.Queue(r.Context(), limit, status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"limit": limit, "status": status, "alerts": alerts})
}

func (s *Server) handleAlertsByAddress(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r, alert.DefaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	address := strings.ToLower(r.PathValue("address"))
	status := optionalAlertStatus(r)
	alerts, err := s.alerts.ByAddress(r.Context(), address, limit, status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"address": address, "limit": limit, "status": status, "alerts": alerts})
}

func (s *Server) handleAckAlert(w http.ResponseWriter, r *http.Request) {
	s.updateAlert(w, r, s.alerts.Ack)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	s.updateAlert(w, r, s.alerts.Resolve)
}

func (s *Server) updateAlert(w http.ResponseWriter, r *http.Request, update func(context.Context, int64, *string) (*model.Alert, error)) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	a, err := update(r.Context(), id, optionalAssignee(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetThresholds(w http.ResponseWriter, r *http.Request) {
	set, err := s.alerts.Thresholds(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleUpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var patch model.ThresholdPatch
	if !decodeJSONBody(w, r, &patch) {
		return
	}
	set, err := s.alerts.UpdateThreshold(r.Context(), r.PathValue("rule"), patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	set, err := s.alerts.ApplyPreset(r.Context(), name)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"preset": name, "thresholds": set})
}

func (s *Server) handleListFailures(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r, 100)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	var status *model.DeadLetterStatus
	switch raw := r.URL.Query().Get("status"); raw {
	case "":
	case string(model.DeadLetterOpen), string(model.DeadLetterResolved):
		st := model.DeadLetterStatus(raw)
		status = &st
	default:
		writeError(w, http.StatusBadRequest, "status must be open or resolved")
		return
	}

	items, err := s.deadLetters.List(r.Context(), limit, status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	counts, err := s.deadLetters.Counts(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": counts, "failures": items})
}

func (s *Server) handleRetryFailure(w http.ResponseWriter, r *http.Request) {
	s.updateFailure(w, r, s.deadLetters.Retry)
}

func (s *Server) handleResolveFailure(w http.ResponseWriter, r *http.Request) {
	s.updateFailure(w, r, s.deadLetters.Resolve)
}

func (s *Server) updateFailure(w http.ResponseWriter, r *http.Request, update func(context.Context, int64) (*model.DeadLetter, error)) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid failure id")
		return
	}
	dl, err := update(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dl)
}
