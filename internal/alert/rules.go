package alert

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/store"
)

// Rule is one of the fixed alert rules. The set is closed: only this package
// can implement it.
type Rule interface {
	Type() model.RuleType
	evaluate(ctx context.Context, src store.ActivityRepository, th model.AlertThreshold, asOf time.Time, limit int) ([]model.AlertCandidate, error)
}

// fanSpike compares an address's outbound or inbound count in the trailing
// 24h against the 24h before it.
type fanSpike struct {
	dir model.Direction
}

// centrality flags addresses whose combined degree in the trailing 24h
// reaches min_count. min_ratio and min_delta are not consulted.
type centrality struct{}

// bridgePath applies the spike test to counterparties of the bridge set.
type bridgePath struct {
	hubs []string
}

func (r fanSpike) Type() model.RuleType {
	if r.dir == model.DirectionInbound {
		return model.RuleFanInSpike
	}
	return model.RuleFanOutSpike
}

func (centrality) Type() model.RuleType { return model.RuleNewHighCentralityNode }

func (bridgePath) Type() model.RuleType { return model.RuleAnomalousBridgePath }

func (r fanSpike) evaluate(ctx context.Context, src store.ActivityRepository, th model.AlertThreshold, asOf time.Time, limit int) ([]model.AlertCandidate, error) {
	counts, err := src.DirectionalCounts(ctx, r.dir, model.DayOverDay(asOf), th.MinCount, max(limit, 50))
	if err != nil {
		return nil, fmt.Errorf("%s counts: %w", r.dir, err)
	}

	nowKey, prevKey := "now_outbound", "prev_outbound"
	if r.dir == model.DirectionInbound {
		nowKey, prevKey = "now_inbound", "prev_inbound"
	}

	var out []model.AlertCandidate
	for _, c := range counts {
		s, ok := spikeOf(c, th)
		if !ok {
			continue
		}
		out = append(out, model.AlertCandidate{
			Type:       r.Type(),
			Address:    c.Address,
			Severity:   s.severity(),
			Confidence: s.confidence(0.5),
			Evidence: model.Evidence{
				nowKey:                  c.Now,
				prevKey:                 c.Prev,
				"ratio":                 roundRatio(s.ratio),
				"delta":                 s.delta,
				model.EvidenceWindowKey: model.WindowDayOverDay,
			},
		})
	}
	return out, nil
}

func (r centrality) evaluate(ctx context.Context, src store.ActivityRepository, th model.AlertThreshold, asOf time.Time, limit int) ([]model.AlertCandidate, error) {
	degrees, err := src.DegreeCounts(ctx, asOf.Add(-24*time.Hour), asOf, th.MinCount, max(limit, 30))
	if err != nil {
		return nil, fmt.Errorf("degree counts: %w", err)
	}

	var out []model.AlertCandidate
	for _, d := range degrees {
		total := d.Total()
		if total < th.MinCount {
			continue
		}
		out = append(out, model.AlertCandidate{
			Type:       r.Type(),
			Address:    d.Address,
			Severity:   model.SeverityMedium,
			Confidence: 0.7,
			Evidence: model.Evidence{
				"outbound":              d.Outbound,
				"inbound":               d.Inbound,
				"degree_proxy":          total,
				model.EvidenceWindowKey: model.WindowLastDay,
			},
		})
	}
	return out, nil
}

func (r bridgePath) evaluate(ctx context.Context, src store.ActivityRepository, th model.AlertThreshold, asOf time.Time, limit int) ([]model.AlertCandidate, error) {
	if len(r.hubs) == 0 {
		return nil, nil
	}
	counts, err := src.CounterpartyCounts(ctx, r.hubs, model.DayOverDay(asOf), th.MinCount, max(limit, 50))
	if err != nil {
		return nil, fmt.Errorf("bridge counts: %w", err)
	}

	var out []model.AlertCandidate
	for _, c := range counts {
		s, ok := spikeOf(c, th)
		if !ok {
			continue
		}
		out = append(out, model.AlertCandidate{
			Type:       r.Type(),
			Address:    c.Address,
			Severity:   s.severity(),
			Confidence: s.confidence(0.55),
			Evidence: model.Evidence{
				"now_bridge":            c.Now,
				"prev_bridge":           c.Prev,
				"ratio":                 roundRatio(s.ratio),
				"delta":                 s.delta,
				"bridge_count":          len(r.hubs),
				model.EvidenceWindowKey: model.WindowDayOverDay,
			},
		})
	}
	return out, nil
}

type spike struct {
	ratio float64
	delta int64
}

// spikeOf applies the now-vs-prev gate shared by the spike and bridge rules.
func spikeOf(c model.WindowCount, th model.AlertThreshold) (spike, bool) {
	baseline := max(c.Prev, 1)
	s := spike{
		ratio: float64(c.Now) / float64(baseline),
		delta: c.Now - c.Prev,
	}
	fires := c.Now >= th.MinCount && s.ratio >= th.MinRatio && s.delta >= th.MinDelta
	return s, fires
}

func (s spike) severity() model.Severity {
	if s.ratio >= 8 {
		return model.SeverityHigh
	}
	return model.SeverityMedium
}

func (s spike) confidence(base float64) float64 {
	return math.Min(0.99, base+math.Min(s.ratio, 10)/12)
}

func roundRatio(r float64) float64 {
	return math.Round(r*100) / 100
}
