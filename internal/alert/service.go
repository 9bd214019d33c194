package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
	"github.com/0xdefence/basetrace/internal/store"
	"github.com/0xdefence/basetrace/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500
)

// Backlog pressure levels derived from the number of new alerts.
const (
	BacklogLow    = "low"
	BacklogMedium = "medium"
	BacklogHigh   = "high"
)

// Service runs the alert rules and manages the alert lifecycle.
type Service struct {
	alerts     store.AlertRepository
	thresholds *Thresholds
	generator  *Generator
	notifier   Notifier
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(alerts store.AlertRepository, thresholds *Thresholds, generator *Generator, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		alerts:     alerts,
		thresholds: thresholds,
		generator:  generator,
		now:        time.Now,
		logger:     logger.With("component", "alert_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep generates candidates with the effective thresholds and persists the
// ones that are not within their rule's cooldown. It returns the inserted
// alerts.
func (s *Service) Sweep(ctx context.Context, limit int) (created []model.Alert, err error) {
	start := time.Now()
	ctx, span := tracing.Tracer("alert").Start(ctx, "alert.sweep")
	defer func() {
		span.SetAttributes(attribute.Int("alerts.created", len(created)))
		tracing.End(span, err)
		metrics.AlertSweepLatency.Observe(time.Since(start).Seconds())
	}()

	thresholds, err := s.thresholds.Effective(ctx)
	if err != nil {
		return nil, err
	}
	asOf := s.now().UTC()
	candidates, err := s.generator.Generate(ctx, thresholds, asOf, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("generate alerts: %w", err)
	}
	return s.persist(ctx, candidates, thresholds, asOf)
}

func (s *Service) persist(ctx context.Context, candidates []model.AlertCandidate, thresholds model.ThresholdSet, asOf time.Time) ([]model.Alert, error) {
	var created []model.Alert
	for _, c := range candidates {
		a := &model.Alert{
			Type:        c.Type,
			Address:     strings.ToLower(c.Address),
			Severity:    c.Severity,
			Confidence:  c.Confidence,
			Evidence:    c.Evidence,
			Status:      model.AlertStatusNew,
			CreatedAt:   asOf,
			Fingerprint: Fingerprint(c.Type, c.Address, c.Evidence.Window()),
		}
		inserted, err := s.alerts.InsertIfCooledDown(ctx, a, thresholds[c.Type].Cooldown())
		if err != nil {
			return created, fmt.Errorf("persist %s alert for %s: %w", c.Type, a.Address, err)
		}
		if !inserted {
			metrics.AlertsSuppressedTotal.WithLabelValues(string(c.Type)).Inc()
			continue
		}
		metrics.AlertsGeneratedTotal.WithLabelValues(string(c.Type)).Inc()
		created = append(created, *a)
	}

	if s.notifier != nil {
		for _, a := range created {
			// Delivery failures never fail the sweep.
			if err := s.notifier.Notify(ctx, a); err != nil {
				s.logger.Debug("alert notification failed",
					"alert_id", a.ID,
					"type", a.Type,
					"error", err,
				)
			}
		}
	}
	if len(created) > 0 {
		s.logger.Info("alerts created", "count", len(created), "candidates", len(candidates))
	}
	return created, nil
}

// Recent regenerates and persists candidates, then lists alerts newest first.
func (s *Service) Recent(ctx context.Context, limit int, status *model.AlertStatus) ([]model.Alert, error) {
	if err := validateOptionalStatus(status); err != nil {
		return nil, err
	}
	if _, err := s.Sweep(ctx, limit); err != nil {
		return nil, err
	}
	alerts, err := s.alerts.ListRecent(ctx, clampLimit(limit), status)
	if err != nil {
		return nil, fmt.Errorf("list recent alerts: %w", err)
	}
	return alerts, nil
}

// ByAddress lists the persisted alerts of one address without generating.
func (s *Service) ByAddress(ctx context.Context, address string, limit int, status *model.AlertStatus) ([]model.Alert, error) {
	if err := validateOptionalStatus(status); err != nil {
		return nil, err
	}
	alerts, err := s.alerts.ListByAddress(ctx, strings.ToLower(address), clampLimit(limit), status)
	if err != nil {
		return nil, fmt.Errorf("list alerts by address: %w", err)
	}
	return alerts, nil
}

// Queue lists alerts in triage order. An empty status means new.
func (s *Service) Queue(ctx context.Context, limit int, status model.AlertStatus) ([]model.Alert, error) {
	if status == "" {
		status = model.AlertStatusNew
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	alerts, err := s.alerts.ListQueue(ctx, clampLimit(limit), status)
	if err != nil {
		return nil, fmt.Errorf("list alert queue: %w", err)
	}
	return alerts, nil
}

// UpdateStatus moves an alert to status. A nil assignee keeps the current one.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status model.AlertStatus, assignee *string) (*model.Alert, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if assignee != nil && *assignee == "" {
		assignee = nil
	}
	a, err := s.alerts.UpdateStatus(ctx, id, status, assignee, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update alert status: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	s.logger.Info("alert status updated", "alert_id", id, "status", status)
	return a, nil
}

func (s *Service) Ack(ctx context.Context, id int64, assignee *string) (*model.Alert, error) {
	return s.UpdateStatus(ctx, id, model.AlertStatusAck, assignee)
}

func (s *Service) Resolve(ctx context.Context, id int64, assignee *string) (*model.Alert, error) {
	return s.UpdateStatus(ctx, id, model.AlertStatusResolved, assignee)
}

func (s *Service) Thresholds(ctx context.Context) (model.ThresholdSet, error) {
	return s.thresholds.Effective(ctx)
}

// UpdateThreshold merges patch into the stored overrides of rule and returns
// the resulting effective configuration.
func (s *Service) UpdateThreshold(ctx context.Context, rule string, patch model.ThresholdPatch) (model.ThresholdSet, error) {
	rt, err := model.ParseRuleType(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}
	if err := s.thresholds.Update(ctx, rt, patch); err != nil {
		return nil, err
	}
	s.logger.Info("threshold updated", "rule", rt)
	return s.thresholds.Effective(ctx)
}

func (s *Service) ApplyPreset(ctx context.Context, name string) (model.ThresholdSet, error) {
	set, err := s.thresholds.ApplyPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("threshold preset applied", "preset", name)
	return set, nil
}

// QueueSummary reports alert counts per status and the backlog pressure.
type QueueSummary struct {
	Counts          map[model.AlertStatus]int64 `json:"counts"`
	BacklogPressure string                      `json:"backlog_pressure"`
}

func (s *Service) QueueSummary(ctx context.Context) (QueueSummary, error) {
	counts, err := s.alerts.CountByStatus(ctx)
	if err != nil {
		return QueueSummary{}, fmt.Errorf("count alerts: %w", err)
	}
	for _, st := range []model.AlertStatus{model.AlertStatusNew, model.AlertStatusAck, model.AlertStatusResolved} {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	return QueueSummary{Counts: counts, BacklogPressure: BacklogPressure(counts[model.AlertStatusNew])}, nil
}

// BacklogPressure grades the number of untriaged alerts.
func BacklogPressure(newAlerts int64) string {
	switch {
	case newAlerts >= 50:
		return BacklogHigh
	case newAlerts >= 10:
		return BacklogMedium
	default:
		return BacklogLow
	}
}

func validateOptionalStatus(status *model.AlertStatus) error {
	if status != nil && !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *status)
	}
	return nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
