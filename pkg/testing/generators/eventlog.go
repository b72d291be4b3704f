// Package generators provides test data generation utilities.
package generators

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/procflow/procflow/pkg/eventlog"
)

// PathSpec is one case variant with its relative weight.
type PathSpec struct {
	Activities []string
	Weight     int
}

// LogGenerator generates synthetic event logs with a controlled variant mix.
type LogGenerator struct {
	rng *rand.Rand

	// Paths is the variant mix. Weights are relative.
	Paths []PathSpec

	// Resources assigned round-robin with jitter. Empty means no resources.
	Resources []string

	// Timing
	StartTime   time.Time
	CaseSpacing time.Duration // gap between case starts
	MinStep     time.Duration // min gap between events in a case
	MaxStep     time.Duration // max gap between events in a case

	// ReworkRate is the probability a case repeats one mid-path activity.
	ReworkRate float64

	// UUIDCaseIDs switches case IDs from CASE-n to random UUIDs.
	UUIDCaseIDs bool
}

// NewLogGenerator creates a generator with a deterministic seed.
func NewLogGenerator(seed int64) *LogGenerator {
	return &LogGenerator{
		rng:         rand.New(rand.NewSource(seed)),
		Paths:       OrderToCashPaths(),
		Resources:   []string{"ALICE", "BOB", "CAROL", "SYSTEM"},
		StartTime:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		CaseSpacing: 30 * time.Minute,
		MinStep:     10 * time.Minute,
		MaxStep:     4 * time.Hour,
	}
}

// Generate produces a log with n cases.
func (g *LogGenerator) Generate(n int) (*eventlog.EventLog, error) {
	log := eventlog.New("synthetic", nil)

	totalWeight := 0
	for _, p := range g.Paths {
		totalWeight += p.Weight
	}
	if totalWeight == 0 || n <= 0 {
		return log, nil
	}

	for i := 0; i < n; i++ {
		caseID := fmt.Sprintf("CASE-%04d", i+1)
		if g.UUIDCaseIDs {
			caseID = uuid.NewString()
		}

		path := g.pickPath(totalWeight)
		activities := path.Activities
		if g.ReworkRate > 0 && len(activities) > 2 && g.rng.Float64() < g.ReworkRate {
			activities = g.injectRework(activities)
		}

		at := g.StartTime.Add(time.Duration(i) * g.CaseSpacing)
		for _, activity := range activities {
			ev, err := eventlog.NewEvent(activity, at)
			if err != nil {
				return nil, err
			}
			ev.Resource = g.pickResource()
			if err := log.AddEvent(caseID, ev); err != nil {
				return nil, err
			}
			at = at.Add(g.step())
		}
	}
	return log, nil
}

func (g *LogGenerator) pickPath(totalWeight int) PathSpec {
	pick := g.rng.Intn(totalWeight)
	for _, p := range g.Paths {
		if pick < p.Weight {
			return p
		}
		pick -= p.Weight
	}
	return g.Paths[len(g.Paths)-1]
}

// injectRework duplicates one mid-path activity immediately after itself.
func (g *LogGenerator) injectRework(activities []string) []string {
	idx := 1 + g.rng.Intn(len(activities)-2)
	out := make([]string, 0, len(activities)+1)
	out = append(out, activities[:idx+1]...)
	out = append(out, activities[idx])
	out = append(out, activities[idx+1:]...)
	return out
}

func (g *LogGenerator) pickResource() string {
	if len(g.Resources) == 0 {
		return ""
	}
	return g.Resources[g.rng.Intn(len(g.Resources))]
}

func (g *LogGenerator) step() time.Duration {
	if g.MaxStep <= g.MinStep {
		return g.MinStep
	}
	return g.MinStep + time.Duration(g.rng.Int63n(int64(g.MaxStep-g.MinStep)))
}

// OrderToCashPaths returns a realistic O2C variant mix. The first path is
// the rework-free happy path and carries most of the weight.
func OrderToCashPaths() []PathSpec {
	return []PathSpec{
		{Activities: []string{
			"Create Sales Order", "Create Delivery", "Goods Issue",
			"Create Invoice", "Clear Invoice",
		}, Weight: 60},
		{Activities: []string{
			"Create Sales Order", "Change Sales Order", "Create Delivery",
			"Goods Issue", "Create Invoice", "Clear Invoice",
		}, Weight: 25},
		{Activities: []string{
			"Create Sales Order", "Create Delivery", "Goods Issue",
			"Create Invoice", "Create Invoice", "Clear Invoice",
		}, Weight: 10},
		{Activities: []string{
			"Create Sales Order", "Reject Sales Order",
		}, Weight: 5},
	}
}

// ProcureToPayPaths returns a P2P variant mix.
func ProcureToPayPaths() []PathSpec {
	return []PathSpec{
		{Activities: []string{
			"Create Purchase Requisition", "Create Purchase Order",
			"Goods Receipt", "Invoice Receipt", "Payment",
		}, Weight: 55},
		{Activities: []string{
			"Create Purchase Order", "Goods Receipt",
			"Invoice Receipt", "Payment",
		}, Weight: 30},
		{Activities: []string{
			"Create Purchase Requisition", "Create Purchase Order",
			"Change Purchase Order", "Goods Receipt",
			"Invoice Receipt", "Payment",
		}, Weight: 15},
	}
}
