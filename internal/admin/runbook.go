package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
)

// ActivitySummarizer reports rolling ingest and alert volumes.
type ActivitySummarizer interface {
	Summary(ctx context.Context, since time.Time) (model.ActivitySummary, error)
}

type ingestRunbook struct {
	State           map[string]string `json:"state"`
	UpdatedAt       *time.Time        `json:"updated_at,omitempty"`
	IngestLagBlocks *int64            `json:"ingest_lag_blocks"`
	LogLagBlocks    *int64            `json:"log_lag_blocks"`
}

func (s *Server) handleIngestRunbook(w http.ResponseWriter, r *http.Request) {
	rows, err := s.state.All(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildIngestRunbook(rows))
}

func buildIngestRunbook(rows []model.IngestState) ingestRunbook {
	rb := ingestRunbook{State: make(map[string]string, len(rows))}
	for _, row := range rows {
		rb.State[row.Key] = row.Value
		if rb.UpdatedAt == nil || row.UpdatedAt.After(*rb.UpdatedAt) {
			t := row.UpdatedAt
			rb.UpdatedAt = &t
		}
	}
	rb.IngestLagBlocks = lag(rb.State, model.StateKeyChainHead, model.CursorKeyTxBlock)
	rb.LogLagBlocks = lag(rb.State, model.StateKeyChainHead, model.CursorKeyLogBlock)
	return rb
}

// lag returns state[head]-state[cursor], or nil when either is missing.
func lag(state map[string]string, headKey, cursorKey string) *int64 {
	head, err := strconv.ParseInt(state[headKey], 10, 64)
	if err != nil {
		return nil
	}
	cursor, err := strconv.ParseInt(state[cursorKey], 10, 64)
	if err != nil {
		return nil
	}
	d := head - cursor
	return &d
}

func (s *Server) handleAlertsRunbook(w http.ResponseWriter, r *http.Request) {
	summary, err := s.alerts.QueueSummary(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := map[string]any{
		"counts":           summary.Counts,
		"backlog_pressure": summary.BacklogPressure,
	}
	if s.activity != nil {
		activity, err := s.activity.Summary(r.Context(), time.Now().Add(-24*time.Hour))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		resp["activity_24h"] = activity
	}
	writeJSON(w, http.StatusOK, resp)
}
