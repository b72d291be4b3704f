// Package social implements organizational mining: handover networks,
// working-together, utilization, activity-resource assignment, centrality
// and Segregation-of-Duty checks.
package social

import (
	"context"
	"sort"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// Options configures the analyzer.
type Options struct {
	// SoDRules overrides the default rule set when non-empty.
	SoDRules []SoDRule `yaml:"sod_rules" json:"sodRules,omitempty"`
	// TopHandovers bounds the handover ranking.
	TopHandovers int `yaml:"top_handovers" json:"topHandovers"`
}

// DefaultOptions returns the standard analyzer options.
func DefaultOptions() Options {
	return Options{TopHandovers: 10}
}

// HandoverEntry is one directed resource pair with its count.
type HandoverEntry struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Count int    `json:"count"`
}

// HandoverReport summarizes work handovers.
type HandoverReport struct {
	Matrix         map[string]map[string]int `json:"matrix"`
	TotalHandovers int                       `json:"totalHandovers"`
	UniquePairs    int                       `json:"uniquePairs"`
	Top            []HandoverEntry           `json:"top"`
}

// WorkPair is an unordered resource pair sharing cases.
type WorkPair struct {
	ResourceA   string `json:"resourceA"`
	ResourceB   string `json:"resourceB"`
	SharedCases int    `json:"sharedCases"`
}

// WorkingTogetherReport summarizes resource co-occurrence within cases.
type WorkingTogetherReport struct {
	TotalPairs                 int        `json:"totalPairs"`
	CasesWithMultipleResources int        `json:"casesWithMultipleResources"`
	Pairs                      []WorkPair `json:"pairs"`
}

// ResourceUtilization describes one resource's workload.
type ResourceUtilization struct {
	Resource         string  `json:"resource"`
	EventCount       int     `json:"eventCount"`
	CaseCount        int     `json:"caseCount"`
	UniqueActivities int     `json:"uniqueActivities"`
	AvgEventsPerCase float64 `json:"avgEventsPerCase"`
}

// UtilizationReport summarizes workload distribution.
type UtilizationReport struct {
	Resources       []ResourceUtilization `json:"resources"`
	WorkloadBalance float64               `json:"workloadBalance"` // coefficient of variation
	IsBalanced      bool                  `json:"isBalanced"`
}

// ActivityResourceEntry describes who performs an activity.
type ActivityResourceEntry struct {
	Activity             string  `json:"activity"`
	TotalExecutions      int     `json:"totalExecutions"`
	ResourceCount        int     `json:"resourceCount"`
	PrimaryResource      string  `json:"primaryResource"`
	PrimaryResourceShare float64 `json:"primaryResourceShare"`
}

// Result is the full social network analysis.
type Result struct {
	CaseCount       int                     `json:"caseCount"`
	ResourceCount   int                     `json:"resourceCount"`
	Handover        HandoverReport          `json:"handover"`
	WorkingTogether WorkingTogetherReport   `json:"workingTogether"`
	Utilization     UtilizationReport       `json:"utilization"`
	ActivityMatrix  []ActivityResourceEntry `json:"activityResourceMatrix"`
	Centrality      []CentralityEntry       `json:"centrality"`
	SoD             SoDReport               `json:"sod"`
}

// Summary returns a compact description of the analysis.
func (r *Result) Summary() map[string]interface{} {
	return map[string]interface{}{
		"resources":       r.ResourceCount,
		"cases":           r.CaseCount,
		"handovers":       r.Handover.TotalHandovers,
		"workloadBalance": r.Utilization.WorkloadBalance,
		"sodViolations":   r.SoD.TotalViolations,
	}
}

// Analyzer runs social network mining over an event log.
type Analyzer struct {
	opts Options
}

// New creates a social network analyzer.
func New(opts Options) *Analyzer {
	if opts.TopHandovers == 0 {
		opts.TopHandovers = 10
	}
	return &Analyzer{opts: opts}
}

// Analyze computes the full social network analysis. Cancellation is polled
// between traces.
func (a *Analyzer) Analyze(ctx context.Context, log *eventlog.EventLog) (*Result, error) {
	result := &Result{
		CaseCount:     log.CaseCount(),
		ResourceCount: len(log.ResourceSet()),
	}

	handover := make(map[string]map[string]int)
	pairCases := make(map[[2]string]int)
	multiResourceCases := 0

	resourceAcc := make(map[string]*resourceAccum)
	activityRes := make(map[string]map[string]int)

	for _, t := range log.Traces() {
		if err := ctx.Err(); err != nil {
			return nil, errors.ContextCanceled("social network analysis")
		}

		for i, e := range t.Events {
			if e.Resource != "" {
				acc := resourceAcc[e.Resource]
				if acc == nil {
					acc = &resourceAccum{cases: make(map[string]bool), activities: make(map[string]bool)}
					resourceAcc[e.Resource] = acc
				}
				acc.events++
				acc.cases[t.CaseID] = true
				acc.activities[e.Activity] = true

				if activityRes[e.Activity] == nil {
					activityRes[e.Activity] = make(map[string]int)
				}
				activityRes[e.Activity][e.Resource]++
			}

			// Handover: consecutive events with distinct resources.
			if i+1 < len(t.Events) {
				from, to := e.Resource, t.Events[i+1].Resource
				if from != "" && to != "" && from != to {
					if handover[from] == nil {
						handover[from] = make(map[string]int)
					}
					handover[from][to]++
				}
			}
		}

		// Working together: unordered pairs of distinct resources per case.
		resources := t.Resources()
		if len(resources) > 1 {
			multiResourceCases++
			sort.Strings(resources)
			for i := 0; i < len(resources); i++ {
				for j := i + 1; j < len(resources); j++ {
					pairCases[[2]string{resources[i], resources[j]}]++
				}
			}
		}
	}

	result.Handover = buildHandoverReport(handover, a.opts.TopHandovers)
	result.WorkingTogether = buildWorkingTogetherReport(pairCases, multiResourceCases)
	result.Utilization = buildUtilizationReport(resourceAcc)
	result.ActivityMatrix = buildActivityMatrix(activityRes)
	result.Centrality = computeCentrality(handover)
	result.SoD = a.checkSoD(log)

	return result, nil
}

func buildHandoverReport(matrix map[string]map[string]int, topN int) HandoverReport {
	report := HandoverReport{Matrix: matrix}
	var entries []HandoverEntry
	for from, targets := range matrix {
		for to, count := range targets {
			report.TotalHandovers += count
			report.UniquePairs++
			entries = append(entries, HandoverEntry{From: from, To: to, Count: count})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		if entries[i].From != entries[j].From {
			return entries[i].From < entries[j].From
		}
		return entries[i].To < entries[j].To
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	report.Top = entries
	return report
}

func buildWorkingTogetherReport(pairCases map[[2]string]int, multiResourceCases int) WorkingTogetherReport {
	report := WorkingTogetherReport{
		TotalPairs:                 len(pairCases),
		CasesWithMultipleResources: multiResourceCases,
	}
	for pair, shared := range pairCases {
		report.Pairs = append(report.Pairs, WorkPair{
			ResourceA:   pair[0],
			ResourceB:   pair[1],
			SharedCases: shared,
		})
	}
	sort.Slice(report.Pairs, func(i, j int) bool {
		if report.Pairs[i].SharedCases != report.Pairs[j].SharedCases {
			return report.Pairs[i].SharedCases > report.Pairs[j].SharedCases
		}
		if report.Pairs[i].ResourceA != report.Pairs[j].ResourceA {
			return report.Pairs[i].ResourceA < report.Pairs[j].ResourceA
		}
		return report.Pairs[i].ResourceB < report.Pairs[j].ResourceB
	})
	return report
}

type resourceAccum struct {
	events     int
	cases      map[string]bool
	activities map[string]bool
}

func buildUtilizationReport(acc map[string]*resourceAccum) UtilizationReport {
	report := UtilizationReport{IsBalanced: true}
	if len(acc) == 0 {
		return report
	}

	eventCounts := make([]int64, 0, len(acc))
	for resource, r := range acc {
		avg := 0.0
		if len(r.cases) > 0 {
			avg = stats.Round2(float64(r.events) / float64(len(r.cases)))
		}
		report.Resources = append(report.Resources, ResourceUtilization{
			Resource:         resource,
			EventCount:       r.events,
			CaseCount:        len(r.cases),
			UniqueActivities: len(r.activities),
			AvgEventsPerCase: avg,
		})
		eventCounts = append(eventCounts, int64(r.events))
	}
	sort.Slice(report.Resources, func(i, j int) bool {
		if report.Resources[i].EventCount != report.Resources[j].EventCount {
			return report.Resources[i].EventCount > report.Resources[j].EventCount
		}
		return report.Resources[i].Resource < report.Resources[j].Resource
	})

	mean := stats.Mean(eventCounts)
	if mean > 0 {
		cv := stats.SampleStdDev(eventCounts, mean) / mean
		report.WorkloadBalance = stats.Round3(cv)
		report.IsBalanced = cv < 0.5
	}
	return report
}

func buildActivityMatrix(activityRes map[string]map[string]int) []ActivityResourceEntry {
	var out []ActivityResourceEntry
	for activity, resources := range activityRes {
		entry := ActivityResourceEntry{Activity: activity}
		primaryCount := 0
		for resource, count := range resources {
			entry.TotalExecutions += count
			entry.ResourceCount++
			if count > primaryCount || (count == primaryCount && resource < entry.PrimaryResource) {
				primaryCount = count
				entry.PrimaryResource = resource
			}
		}
		if entry.TotalExecutions > 0 {
			entry.PrimaryResourceShare = stats.Round2(float64(primaryCount) / float64(entry.TotalExecutions) * 100)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalExecutions != out[j].TotalExecutions {
			return out[i].TotalExecutions > out[j].TotalExecutions
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}
