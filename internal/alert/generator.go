package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/0xdefence/basetrace/internal/domain/model"
	"github.com/0xdefence/basetrace/internal/store"
)

// DefaultBridgeAddresses are the Base L2 bridge and messenger predeploys.
var DefaultBridgeAddresses = []string{
	"0x4200000000000000000000000000000000000010", // L2StandardBridge
	"0x4200000000000000000000000000000000000007", // L2CrossDomainMessenger
	"0x4200000000000000000000000000000000000016", // L2ToL1MessagePasser
	"0x4200000000000000000000000000000000000014", // L2ERC721Bridge
}

// Generator evaluates every rule against the activity tables.
type Generator struct {
	activity store.ActivityRepository
	rules    []Rule
}

// NewGenerator builds the fixed rule set. bridges is copied and lowercased.
func NewGenerator(activity store.ActivityRepository, bridges []string) *Generator {
	hubs := make([]string, 0, len(bridges))
	for _, b := range bridges {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			hubs = append(hubs, b)
		}
	}
	return &Generator{
		activity: activity,
		rules: []Rule{
			fanSpike{dir: model.DirectionOutbound},
			fanSpike{dir: model.DirectionInbound},
			centrality{},
			bridgePath{hubs: hubs},
		},
	}
}

// Rules returns the rules in evaluation order.
func (g *Generator) Rules() []Rule {
	return g.rules
}

// Generate concatenates the candidates of every enabled rule. Rules without
// an entry in thresholds are skipped.
func (g *Generator) Generate(ctx context.Context, thresholds model.ThresholdSet, asOf time.Time, limit int) ([]model.AlertCandidate, error) {
	var out []model.AlertCandidate
	for _, r := range g.rules {
		th, ok := thresholds[r.Type()]
		if !ok || !th.Enabled {
			continue
		}
		found, err := r.evaluate(ctx, g.activity, th, asOf, limit)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", r.Type(), err)
		}
		out = append(out, found...)
	}
	return out, nil
}
