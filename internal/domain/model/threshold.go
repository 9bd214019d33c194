package model

import "time"

// AlertThreshold is the effective configuration of one rule. MinRatio and
// MinDelta are carried for every rule even where the rule ignores them.
type AlertThreshold struct {
	MinRatio      float64 `json:"min_ratio" yaml:"min_ratio"`
	MinDelta      int64   `json:"min_delta" yaml:"min_delta"`
	MinCount      int64   `json:"min_count" yaml:"min_count"`
	CooldownHours int     `json:"cooldown_hours" yaml:"cooldown_hours"`
	Enabled       bool    `json:"enabled" yaml:"enabled"`
}

func (t AlertThreshold) Cooldown() time.Duration {
	return time.Duration(t.CooldownHours) * time.Hour
}

// ThresholdPatch holds a partial threshold update; nil fields are left as is.
type ThresholdPatch struct {
	MinRatio      *float64 `json:"min_ratio,omitempty" yaml:"min_ratio,omitempty"`
	MinDelta      *int64   `json:"min_delta,omitempty" yaml:"min_delta,omitempty"`
	MinCount      *int64   `json:"min_count,omitempty" yaml:"min_count,omitempty"`
	CooldownHours *int     `json:"cooldown_hours,omitempty" yaml:"cooldown_hours,omitempty"`
	Enabled       *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

func (p ThresholdPatch) IsEmpty() bool {
	return p.MinRatio == nil && p.MinDelta == nil && p.MinCount == nil &&
		p.CooldownHours == nil && p.Enabled == nil
}

// Apply returns t with every non-nil field of p overlaid.
func (p ThresholdPatch) Apply(t AlertThreshold) AlertThreshold {
	if p.MinRatio != nil {
		t.MinRatio = *p.MinRatio
	}
	if p.MinDelta != nil {
		t.MinDelta = *p.MinDelta
	}
	if p.MinCount != nil {
		t.MinCount = *p.MinCount
	}
	if p.CooldownHours != nil {
		t.CooldownHours = *p.CooldownHours
	}
	if p.Enabled != nil {
		t.Enabled = *p.Enabled
	}
	return t
}

// FullPatch converts a complete threshold into a patch that sets every field.
func FullPatch(t AlertThreshold) ThresholdPatch {
	return ThresholdPatch{
		MinRatio:      &t.MinRatio,
		MinDelta:      &t.MinDelta,
		MinCount:      &t.MinCount,
		CooldownHours: &t.CooldownHours,
		Enabled:       &t.Enabled,
	}
}

type ThresholdSet map[RuleType]AlertThreshold

func (s ThresholdSet) Clone() ThresholdSet {
	out := make(ThresholdSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
