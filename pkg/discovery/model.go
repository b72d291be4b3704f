// Package discovery implements the Heuristic Miner: it discovers a
// dependency net (ProcessModel) from an event log.
package discovery

import (
	"github.com/procflow/procflow/pkg/eventlog"
)

// Config holds the mining thresholds.
type Config struct {
	DependencyThreshold     float64 `yaml:"dependency_threshold" json:"dependencyThreshold"`
	AndThreshold            float64 `yaml:"and_threshold" json:"andThreshold"`
	LoopLengthOneThreshold  float64 `yaml:"loop_length_one_threshold" json:"loopLengthOneThreshold"`
	LoopLengthTwoThreshold  float64 `yaml:"loop_length_two_threshold" json:"loopLengthTwoThreshold"`
	RelativeToBestThreshold float64 `yaml:"relative_to_best_threshold" json:"relativeToBestThreshold"`
	MinFrequency            int     `yaml:"min_frequency" json:"minFrequency"`
}

// DefaultConfig returns the standard Heuristic Miner thresholds.
func DefaultConfig() Config {
	return Config{
		DependencyThreshold:     0.5,
		AndThreshold:            0.1,
		LoopLengthOneThreshold:  0.5,
		LoopLengthTwoThreshold:  0.5,
		RelativeToBestThreshold: 0.05,
		MinFrequency:            1,
	}
}

// Edge is a kept dependency between two activities.
type Edge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Frequency  int     `json:"frequency"`
	Dependency float64 `json:"dependency"`
}

// LoopL1 is a length-one loop (an activity directly following itself).
type LoopL1 struct {
	Activity   string  `json:"activity"`
	Frequency  int     `json:"frequency"`
	Dependency float64 `json:"dependency"`
}

// LoopL2 is a length-two loop over an unordered activity pair.
type LoopL2 struct {
	ActivityA  string  `json:"activityA"`
	ActivityB  string  `json:"activityB"`
	Frequency  int     `json:"frequency"`
	Dependency float64 `json:"dependency"`
}

// Gateway kinds and types.
const (
	GatewaySplit = "split"
	GatewayJoin  = "join"

	GatewayAnd = "and"
	GatewayXor = "xor"
	GatewayOr  = "or"
)

// Gateway is a split or join point in the dependency net.
type Gateway struct {
	Activity string   `json:"activity"`
	Kind     string   `json:"kind"` // split or join
	Type     string   `json:"type"` // and, xor or or
	Branches []string `json:"branches"`
	CoRate   float64  `json:"coRate"`
}

// ProcessModel is the discovered dependency net. Immutable after
// construction.
type ProcessModel struct {
	Activities      []string                      `json:"activities"`
	Edges           []Edge                        `json:"edges"`
	StartActivities []eventlog.ActivityCount      `json:"startActivities"`
	EndActivities   []eventlog.ActivityCount      `json:"endActivities"`
	LoopsL1         []LoopL1                      `json:"loopsL1"`
	LoopsL2         []LoopL2                      `json:"loopsL2"`
	Gateways        []Gateway                     `json:"gateways"`
	DFMatrix        map[string]map[string]int     `json:"dfMatrix"`
	DepMatrix       map[string]map[string]float64 `json:"depMatrix"`
	CaseCount       int                           `json:"caseCount"`
	EventCount      int                           `json:"eventCount"`
}

// Summary returns a compact description of the model.
func (m *ProcessModel) Summary() map[string]interface{} {
	return map[string]interface{}{
		"activities": len(m.Activities),
		"edges":      len(m.Edges),
		"loopsL1":    len(m.LoopsL1),
		"loopsL2":    len(m.LoopsL2),
		"gateways":   len(m.Gateways),
		"cases":      m.CaseCount,
		"events":     m.EventCount,
	}
}
