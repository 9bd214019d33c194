package model

import (
	"fmt"
	"time"
)

type RuleType string

const (
	RuleFanOutSpike           RuleType = "fan_out_spike"
	RuleFanInSpike            RuleType = "fan_in_spike"
	RuleNewHighCentralityNode RuleType = "new_high_centrality_node"
	RuleAnomalousBridgePath   RuleType = "anomalous_bridge_path"
)

// RuleTypes lists every rule in evaluation order.
var RuleTypes = []RuleType{
	RuleFanOutSpike,
	RuleFanInSpike,
	RuleNewHighCentralityNode,
	RuleAnomalousBridgePath,
}

func ParseRuleType(s string) (RuleType, error) {
	for _, rt := range RuleTypes {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("unknown rule type %q", s)
}

type AlertStatus string

const (
	AlertStatusNew      AlertStatus = "new"
	AlertStatusAck      AlertStatus = "ack"
	AlertStatusResolved AlertStatus = "resolved"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusNew, AlertStatusAck, AlertStatusResolved:
		return true
	}
	return false
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities for the triage queue: high 3, medium 2, anything else 1.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// Evidence carries the rule-specific numbers behind a finding. The "window"
// entry labels the comparison window and takes part in the fingerprint.
type Evidence map[string]any

const EvidenceWindowKey = "window"

const (
	WindowDayOverDay = "24h_vs_prev24h"
	WindowLastDay    = "last_24h"
)

func (e Evidence) Window() string {
	if v, ok := e[EvidenceWindowKey].(string); ok {
		return v
	}
	return ""
}

// AlertCandidate is a rule finding that has not been deduplicated yet.
type AlertCandidate struct {
	Type       RuleType
	Address    string
	Severity   Severity
	Confidence float64
	Evidence   Evidence
}

type Alert struct {
	ID          int64       `db:"id" json:"id"`
	Type        RuleType    `db:"type" json:"type"`
	Address     string      `db:"address" json:"address"`
	Severity    Severity    `db:"severity" json:"severity"`
	Confidence  float64     `db:"confidence" json:"confidence"`
	Evidence    Evidence    `db:"evidence" json:"evidence"`
	Status      AlertStatus `db:"status" json:"status"`
	Assignee    *string     `db:"assignee" json:"assignee"`
	AckAt       *time.Time  `db:"ack_at" json:"ack_at"`
	ResolvedAt  *time.Time  `db:"resolved_at" json:"resolved_at"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	Fingerprint string      `db:"fingerprint" json:"fingerprint"`
}
