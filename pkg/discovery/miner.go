package discovery

import (
	"context"
	"sort"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// Miner discovers a dependency net from an event log.
type Miner struct {
	cfg Config
}

// NewMiner creates a miner with the given thresholds.
func NewMiner(cfg Config) *Miner {
	return &Miner{cfg: cfg}
}

// Mine runs the Heuristic Miner over the log. Cancellation is polled
// between traces and between gateway candidates.
func (m *Miner) Mine(ctx context.Context, log *eventlog.EventLog) (*ProcessModel, error) {
	traces := log.Traces()

	// 1. Directly-follows counts and activity inventory.
	dfg := make(map[string]map[string]int)
	activitySet := make(map[string]bool)
	for _, t := range traces {
		if err := ctx.Err(); err != nil {
			return nil, errors.ContextCanceled("mine")
		}
		for i, e := range t.Events {
			activitySet[e.Activity] = true
			if i+1 < len(t.Events) {
				next := t.Events[i+1].Activity
				if dfg[e.Activity] == nil {
					dfg[e.Activity] = make(map[string]int)
				}
				dfg[e.Activity][next]++
			}
		}
	}

	activities := make([]string, 0, len(activitySet))
	for a := range activitySet {
		activities = append(activities, a)
	}
	sort.Strings(activities)

	// 2. Dependency matrix.
	dep := make(map[string]map[string]float64, len(activities))
	for _, a := range activities {
		dep[a] = make(map[string]float64, len(activities))
		for _, b := range activities {
			dep[a][b] = dependency(dfg, a, b)
		}
	}

	model := &ProcessModel{
		Activities:      activities,
		StartActivities: log.StartActivities(),
		EndActivities:   log.EndActivities(),
		DFMatrix:        dfg,
		DepMatrix:       roundMatrix(dep),
		CaseCount:       log.CaseCount(),
		EventCount:      log.EventCount(),
	}

	// 3. Length-one loops.
	for _, a := range activities {
		if d := dep[a][a]; d >= m.cfg.LoopLengthOneThreshold {
			model.LoopsL1 = append(model.LoopsL1, LoopL1{
				Activity:   a,
				Frequency:  dfg[a][a],
				Dependency: stats.Round3(d),
			})
		}
	}

	// 4. Length-two loops, one entry per unordered pair.
	l2 := countL2Patterns(traces)
	seen := make(map[[2]string]bool)
	for a, targets := range l2 {
		for b, fwd := range targets {
			key := [2]string{a, b}
			if b < a {
				key = [2]string{b, a}
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			rev := l2[b][a]
			total := fwd + rev
			d := float64(total) / float64(total+1)
			if d >= m.cfg.LoopLengthTwoThreshold {
				model.LoopsL2 = append(model.LoopsL2, LoopL2{
					ActivityA:  key[0],
					ActivityB:  key[1],
					Frequency:  total,
					Dependency: stats.Round3(d),
				})
			}
		}
	}
	sort.Slice(model.LoopsL2, func(i, j int) bool {
		if model.LoopsL2[i].ActivityA != model.LoopsL2[j].ActivityA {
			return model.LoopsL2[i].ActivityA < model.LoopsL2[j].ActivityA
		}
		return model.LoopsL2[i].ActivityB < model.LoopsL2[j].ActivityB
	})

	// 5. Dependency net.
	for _, a := range activities {
		best := 0.0
		for _, b := range activities {
			if a != b && dep[a][b] > best {
				best = dep[a][b]
			}
		}
		for _, b := range activities {
			if a == b {
				continue
			}
			freq := dfg[a][b]
			if freq < m.cfg.MinFrequency {
				continue
			}
			d := dep[a][b]
			keep := d >= m.cfg.DependencyThreshold ||
				(best > 0 && best-d <= m.cfg.RelativeToBestThreshold)
			if keep {
				model.Edges = append(model.Edges, Edge{
					Source:     a,
					Target:     b,
					Frequency:  freq,
					Dependency: stats.Round3(d),
				})
			}
		}
	}

	// 7. Gateways.
	gateways, err := m.classifyGateways(ctx, model.Edges, traces)
	if err != nil {
		return nil, err
	}
	model.Gateways = gateways

	return model, nil
}

// dependency is the Heuristic Miner dependency measure.
func dependency(dfg map[string]map[string]int, a, b string) float64 {
	ab := dfg[a][b]
	if a == b {
		return float64(ab) / float64(ab+1)
	}
	ba := dfg[b][a]
	return float64(ab-ba) / float64(ab+ba+1)
}

// countL2Patterns counts a,b,a occurrences with a != b, keyed [a][b].
func countL2Patterns(traces []*eventlog.Trace) map[string]map[string]int {
	counts := make(map[string]map[string]int)
	for _, t := range traces {
		for i := 0; i+2 < len(t.Events); i++ {
			a := t.Events[i].Activity
			b := t.Events[i+1].Activity
			if a != b && t.Events[i+2].Activity == a {
				if counts[a] == nil {
					counts[a] = make(map[string]int)
				}
				counts[a][b]++
			}
		}
	}
	return counts
}

// classifyGateways finds splits and joins over the kept edges and classifies
// them by branch co-occurrence across cases.
func (m *Miner) classifyGateways(ctx context.Context, edges []Edge, traces []*eventlog.Trace) ([]Gateway, error) {
	outgoing := make(map[string][]string)
	incoming := make(map[string][]string)
	for _, e := range edges {
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
		incoming[e.Target] = append(incoming[e.Target], e.Source)
	}

	var gateways []Gateway
	appendGateway := func(activity, kind string, branches []string) error {
		if err := ctx.Err(); err != nil {
			return errors.ContextCanceled("gateway classification")
		}
		sort.Strings(branches)
		gwType, coRate := m.classifyBranches(branches, traces)
		gateways = append(gateways, Gateway{
			Activity: activity,
			Kind:     kind,
			Type:     gwType,
			Branches: branches,
			CoRate:   stats.Round3(coRate),
		})
		return nil
	}

	splitActs := sortedKeys(outgoing)
	for _, a := range splitActs {
		if len(outgoing[a]) >= 2 {
			if err := appendGateway(a, GatewaySplit, outgoing[a]); err != nil {
				return nil, err
			}
		}
	}
	joinActs := sortedKeys(incoming)
	for _, a := range joinActs {
		if len(incoming[a]) >= 2 {
			if err := appendGateway(a, GatewayJoin, incoming[a]); err != nil {
				return nil, err
			}
		}
	}
	return gateways, nil
}

// classifyBranches computes the branch co-occurrence rate across cases and
// maps it to a gateway type.
func (m *Miner) classifyBranches(branches []string, traces []*eventlog.Trace) (string, float64) {
	branchSet := make(map[string]bool, len(branches))
	for _, b := range branches {
		branchSet[b] = true
	}

	casesWithAny := 0
	casesWithTwo := 0
	for _, t := range traces {
		found := 0
		seen := make(map[string]bool, len(branches))
		for _, e := range t.Events {
			if branchSet[e.Activity] && !seen[e.Activity] {
				seen[e.Activity] = true
				found++
			}
		}
		if found >= 1 {
			casesWithAny++
		}
		if found >= 2 {
			casesWithTwo++
		}
	}

	coRate := 0.0
	if casesWithAny > 0 {
		coRate = float64(casesWithTwo) / float64(casesWithAny)
	}

	switch {
	case coRate > 1-m.cfg.AndThreshold:
		return GatewayAnd, coRate
	case coRate < m.cfg.AndThreshold:
		return GatewayXor, coRate
	default:
		return GatewayOr, coRate
	}
}

func roundMatrix(dep map[string]map[string]float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(dep))
	for a, row := range dep {
		out[a] = make(map[string]float64, len(row))
		for b, v := range row {
			out[a][b] = stats.Round3(v)
		}
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
