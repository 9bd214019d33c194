package alert

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/0xdefence/basetrace/internal/cache"
	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/metrics"
	"github.com/0xdefence/basetrace/internal/store"
	"gopkg.in/yaml.v3"
)

// DefaultThresholds returns the built-in configuration of every rule.
func DefaultThresholds() model.ThresholdSet {
	spike := model.AlertThreshold{MinRatio: 3.0, MinDelta: 20, MinCount: 25, CooldownHours: 6, Enabled: true}
	return model.ThresholdSet{
		model.RuleFanOutSpike:           spike,
		model.RuleFanInSpike:            spike,
		model.RuleNewHighCentralityNode: {MinRatio: 3.0, MinDelta: 20, MinCount: 300, CooldownHours: 12, Enabled: true},
		model.RuleAnomalousBridgePath:   {MinRatio: 3.0, MinDelta: 10, MinCount: 10, CooldownHours: 6, Enabled: true},
	}
}

// DefaultPresets returns the named presets: "base" is the defaults,
// "conservative" fires less often and "aggressive" more often.
func DefaultPresets() map[string]model.ThresholdSet {
	base := DefaultThresholds()
	return map[string]model.ThresholdSet{
		"base":         base,
		"conservative": scale(base, 1.5, 2),
		"aggressive":   scale(base, 0.75, 0.5),
	}
}

func scale(set model.ThresholdSet, ratio, factor float64) model.ThresholdSet {
	out := make(model.ThresholdSet, len(set))
	for rule, t := range set {
		t.MinRatio = t.MinRatio * ratio
		t.MinDelta = max(1, int64(float64(t.MinDelta)*factor))
		t.MinCount = max(1, int64(float64(t.MinCount)*factor))
		t.CooldownHours = max(1, int(float64(t.CooldownHours)*factor))
		out[rule] = t
	}
	return out
}

// presetFile is the YAML layout of ALERT_PRESETS_FILE:
//
//	presets:
//	  night:
//	    fan_out_spike: {min_ratio: 4, min_delta: 30, min_count: 40, cooldown_hours: 8, enabled: true}
//
// Each rule entry is a patch: omitted fields keep the value of the preset
// being extended, or the default for a new preset. Omitted rules are kept
// the same way.
type presetFile struct {
	Presets map[string]map[string]model.ThresholdPatch `yaml:"presets"`
}

// LoadPresets merges the presets in path over DefaultPresets. An empty path
// returns the defaults.
func LoadPresets(path string) (map[string]model.ThresholdSet, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}
	return mergePresets(presets, raw)
}

func mergePresets(presets map[string]model.ThresholdSet, raw []byte) (map[string]model.ThresholdSet, error) {
	var file presetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse presets file: %w", err)
	}
	for name, rules := range file.Presets {
		if name == "" {
			return nil, fmt.Errorf("preset with empty name")
		}
		set, ok := presets[name]
		if ok {
			set = set.Clone()
		} else {
			set = DefaultThresholds()
		}
		for ruleName, patch := range rules {
			rule, err := model.ParseRuleType(ruleName)
			if err != nil {
				return nil, fmt.Errorf("preset %s: %w", name, err)
			}
			if err := validatePatch(patch); err != nil {
				return nil, fmt.Errorf("preset %s rule %s: %w", name, rule, err)
			}
			set[rule] = patch.Apply(set[rule])
		}
		presets[name] = set
	}
	return presets, nil
}

const effectiveKey = "effective"

// Thresholds resolves the effective rule configuration: defaults overlaid by
// stored per-field overrides. Reads are cached briefly and every write
// invalidates the cache.
type Thresholds struct {
	repo     store.ThresholdRepository
	defaults model.ThresholdSet
	presets  map[string]model.ThresholdSet
	cache    *cache.LRU[string, model.ThresholdSet]
}

func NewThresholds(repo store.ThresholdRepository, presets map[string]model.ThresholdSet, ttl time.Duration) *Thresholds {
	if presets == nil {
		presets = DefaultPresets()
	}
	return &Thresholds{
		repo:     repo,
		defaults: DefaultThresholds(),
		presets:  presets,
		cache:    cache.NewLRU[string, model.ThresholdSet](1, ttl),
	}
}

// Effective returns a copy of the current configuration.
func (t *Thresholds) Effective(ctx context.Context) (model.ThresholdSet, error) {
	loaded := false
	set, err := t.cache.GetOrLoad(effectiveKey, func() (model.ThresholdSet, error) {
		loaded = true
		return t.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	if loaded {
		metrics.ThresholdCacheMisses.Inc()
	} else {
		metrics.ThresholdCacheHits.Inc()
	}
	return set.Clone(), nil
}

func (t *Thresholds) load(ctx context.Context) (model.ThresholdSet, error) {
	overrides, err := t.repo.Overrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("load threshold overrides: %w", err)
	}
	set := t.defaults.Clone()
	for rule, patch := range overrides {
		base, ok := set[rule]
		if !ok {
			continue
		}
		set[rule] = patch.Apply(base)
	}
	return set, nil
}

// Update stores the provided fields of patch for rule.
func (t *Thresholds) Update(ctx context.Context, rule model.RuleType, patch model.ThresholdPatch) error {
	if err := validatePatch(patch); err != nil {
		return err
	}
	defer t.cache.Purge()
	if err := t.repo.Patch(ctx, rule, patch); err != nil {
		return fmt.Errorf("update threshold %s: %w", rule, err)
	}
	return nil
}

// ApplyPreset replaces the stored configuration of every rule with the preset.
func (t *Thresholds) ApplyPreset(ctx context.Context, name string) (model.ThresholdSet, error) {
	preset, ok := t.presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	defer t.cache.Purge()
	if err := t.repo.ReplaceAll(ctx, preset); err != nil {
		return nil, fmt.Errorf("apply preset %s: %w", name, err)
	}
	return preset.Clone(), nil
}

// PresetNames returns the known preset names, sorted.
func (t *Thresholds) PresetNames() []string {
	names := make([]string, 0, len(t.presets))
	for name := range t.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validatePatch(p model.ThresholdPatch) error {
	switch {
	case p.IsEmpty():
		return fmt.Errorf("%w: no fields given", ErrInvalidThreshold)
	case p.MinRatio != nil && *p.MinRatio < 0:
		return fmt.Errorf("%w: min_ratio must be >= 0", ErrInvalidThreshold)
	case p.MinDelta != nil && *p.MinDelta < 0:
		return fmt.Errorf("%w: min_delta must be >= 0", ErrInvalidThreshold)
	case p.MinCount != nil && *p.MinCount < 0:
		return fmt.Errorf("%w: min_count must be >= 0", ErrInvalidThreshold)
	case p.CooldownHours != nil && *p.CooldownHours < 0:
		return fmt.Errorf("%w: cooldown_hours must be >= 0", ErrInvalidThreshold)
	}
	return nil
}
