// Package variants implements variant analysis: variant extraction, duration
// statistics, rework, clustering, deviation typing and lift-based root
// causes.
package variants

import (
	"context"
	"sort"
	"strings"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// Options configures the analyzer.
type Options struct {
	// ClusterThreshold is the maximum normalized edit distance for a
	// variant to join a cluster.
	ClusterThreshold float64 `yaml:"cluster_threshold" json:"clusterThreshold"`
	// MaxVariants bounds how many variants clustering considers.
	MaxVariants int `yaml:"max_variants" json:"maxVariants"`
	// RootCauseVariants bounds how many top variants root-cause detection
	// inspects.
	RootCauseVariants int `yaml:"root_cause_variants" json:"rootCauseVariants"`
}

// DefaultOptions returns the standard analyzer options.
func DefaultOptions() Options {
	return Options{
		ClusterThreshold:  0.3,
		MaxVariants:       100,
		RootCauseVariants: 10,
	}
}

// ReworkActivity is an activity with its occurrence count.
type ReworkActivity struct {
	Activity    string `json:"activity"`
	Occurrences int    `json:"occurrences"`
}

// Detail is one variant with its statistics.
type Detail struct {
	Key                 string           `json:"variant"`
	Count               int              `json:"count"`
	CaseIDs             []string         `json:"caseIds"`
	Percentage          float64          `json:"percentage"`
	Activities          []string         `json:"activities"`
	UniqueActivityCount int              `json:"uniqueActivityCount"`
	HasRework           bool             `json:"hasRework"`
	ReworkActivities    []ReworkActivity `json:"reworkActivities,omitempty"`
	DurationStats       stats.Stats      `json:"durationStats"`
	IsReworkFree        bool             `json:"isReworkFree"`
}

// ReworkSummary aggregates rework across the log.
type ReworkSummary struct {
	CasesWithRework       int              `json:"casesWithRework"`
	ReworkRate            float64          `json:"reworkRate"`
	FirstTimeRightRate    float64          `json:"firstTimeRightRate"`
	TotalExtraOccurrences int              `json:"totalExtraOccurrences"`
	ActivityRanking       []ReworkActivity `json:"activityRanking"`
}

// Cluster is a group of variants within the edit-distance threshold of its
// seed.
type Cluster struct {
	ID        int      `json:"id"`
	Seed      string   `json:"seed"`
	Variants  []string `json:"variants"`
	CaseCount int      `json:"caseCount"`
}

// Deviation types.
const (
	DeviationSkip         = "skip"
	DeviationInsertion    = "insertion"
	DeviationSubstitution = "substitution"
	DeviationReorder      = "reorder"
)

// Deviation describes how a variant differs from the happy path.
type Deviation struct {
	Key                string   `json:"variant"`
	CaseCount          int      `json:"caseCount"`
	EditDistance       int      `json:"editDistance"`
	NormalizedDistance float64  `json:"normalizedDistance"`
	SkippedActivities  []string `json:"skippedActivities"`
	InsertedActivities []string `json:"insertedActivities"`
	Type               string   `json:"type"`
}

// RootCause is an attribute value correlated with a variant.
type RootCause struct {
	Variant        string  `json:"variant"`
	Attribute      string  `json:"attribute"`
	Value          string  `json:"value"`
	Lift           float64 `json:"lift"`
	CasesInBoth    int     `json:"casesInBoth"`
	CasesWithValue int     `json:"casesWithValue"`
	Direction      string  `json:"direction"` // positive or negative
}

// Result is the full variant analysis.
type Result struct {
	TotalVariantCount int           `json:"totalVariantCount"`
	CaseCount         int           `json:"caseCount"`
	Variants          []Detail      `json:"variants"`
	HappyPath         *Detail       `json:"happyPath,omitempty"`
	ConformantRate    float64       `json:"conformantRate"`
	Rework            ReworkSummary `json:"rework"`
	Clusters          []Cluster     `json:"clusters"`
	Deviations        []Deviation   `json:"deviations"`
	RootCauses        []RootCause   `json:"rootCauses"`
}

// Summary returns a compact description of the analysis.
func (r *Result) Summary() map[string]interface{} {
	happy := ""
	if r.HappyPath != nil {
		happy = r.HappyPath.Key
	}
	return map[string]interface{}{
		"variants":   r.TotalVariantCount,
		"cases":      r.CaseCount,
		"happyPath":  happy,
		"reworkRate": r.Rework.ReworkRate,
		"clusters":   len(r.Clusters),
		"deviations": len(r.Deviations),
		"rootCauses": len(r.RootCauses),
	}
}

// Analyzer runs variant analysis over an event log.
type Analyzer struct {
	opts Options
}

// New creates a variant analyzer.
func New(opts Options) *Analyzer {
	if opts.ClusterThreshold == 0 {
		opts.ClusterThreshold = 0.3
	}
	if opts.MaxVariants == 0 {
		opts.MaxVariants = 100
	}
	if opts.RootCauseVariants == 0 {
		opts.RootCauseVariants = 10
	}
	return &Analyzer{opts: opts}
}

// Analyze computes the full variant analysis. Cancellation is polled between
// variant pairs during clustering.
func (a *Analyzer) Analyze(ctx context.Context, log *eventlog.EventLog) (*Result, error) {
	result := &Result{CaseCount: log.CaseCount()}

	details := a.extractVariants(log)
	result.Variants = details
	result.TotalVariantCount = len(details)

	result.HappyPath = pickHappyPath(details)
	if result.HappyPath != nil && result.CaseCount > 0 {
		result.ConformantRate = stats.Round2(float64(result.HappyPath.Count) / float64(result.CaseCount) * 100)
	}

	result.Rework = summarizeRework(log)

	clusters, err := a.clusterVariants(ctx, details)
	if err != nil {
		return nil, err
	}
	result.Clusters = clusters

	result.Deviations = a.findDeviations(details, result.HappyPath)
	result.RootCauses = a.findRootCauses(log, details)

	return result, nil
}

// extractVariants builds the per-variant details with duration statistics.
func (a *Analyzer) extractVariants(log *eventlog.EventLog) []Detail {
	variants := log.Variants()
	details := make([]Detail, 0, len(variants))

	for _, v := range variants {
		activities := splitVariantKey(v.Key)

		occurrences := make(map[string]int)
		for _, act := range activities {
			occurrences[act]++
		}
		var rework []ReworkActivity
		for act, n := range occurrences {
			if n > 1 {
				rework = append(rework, ReworkActivity{Activity: act, Occurrences: n})
			}
		}
		sort.Slice(rework, func(i, j int) bool {
			if rework[i].Occurrences != rework[j].Occurrences {
				return rework[i].Occurrences > rework[j].Occurrences
			}
			return rework[i].Activity < rework[j].Activity
		})

		durations := make([]int64, 0, len(v.CaseIDs))
		for _, caseID := range v.CaseIDs {
			if t := log.Trace(caseID); t != nil {
				durations = append(durations, t.DurationMillis())
			}
		}

		details = append(details, Detail{
			Key:                 v.Key,
			Count:               v.Count,
			CaseIDs:             v.CaseIDs,
			Percentage:          v.Percentage,
			Activities:          activities,
			UniqueActivityCount: len(occurrences),
			HasRework:           len(rework) > 0,
			ReworkActivities:    rework,
			DurationStats:       stats.Describe(durations),
			IsReworkFree:        len(rework) == 0,
		})
	}
	return details
}

// pickHappyPath selects the first rework-free variant in frequency order, or
// the most frequent variant when none is rework-free.
func pickHappyPath(details []Detail) *Detail {
	for i := range details {
		if details[i].IsReworkFree {
			return &details[i]
		}
	}
	if len(details) > 0 {
		return &details[0]
	}
	return nil
}

// summarizeRework aggregates repeated activities across cases.
func summarizeRework(log *eventlog.EventLog) ReworkSummary {
	summary := ReworkSummary{FirstTimeRightRate: 100}
	total := log.CaseCount()
	if total == 0 {
		return summary
	}

	extraPerActivity := make(map[string]int)
	for _, t := range log.Traces() {
		occurrences := make(map[string]int, len(t.Events))
		for _, e := range t.Events {
			occurrences[e.Activity]++
		}
		hasRework := false
		for act, n := range occurrences {
			if n > 1 {
				hasRework = true
				extraPerActivity[act] += n - 1
				summary.TotalExtraOccurrences += n - 1
			}
		}
		if hasRework {
			summary.CasesWithRework++
		}
	}

	summary.ReworkRate = stats.Round2(float64(summary.CasesWithRework) / float64(total) * 100)
	summary.FirstTimeRightRate = stats.Round2(100 - summary.ReworkRate)

	for act, n := range extraPerActivity {
		summary.ActivityRanking = append(summary.ActivityRanking, ReworkActivity{Activity: act, Occurrences: n})
	}
	sort.Slice(summary.ActivityRanking, func(i, j int) bool {
		if summary.ActivityRanking[i].Occurrences != summary.ActivityRanking[j].Occurrences {
			return summary.ActivityRanking[i].Occurrences > summary.ActivityRanking[j].Occurrences
		}
		return summary.ActivityRanking[i].Activity < summary.ActivityRanking[j].Activity
	})
	return summary
}

// clusterVariants greedily seeds clusters from the head of the frequency
// ordering and absorbs later variants within the distance threshold.
func (a *Analyzer) clusterVariants(ctx context.Context, details []Detail) ([]Cluster, error) {
	limit := len(details)
	if limit > a.opts.MaxVariants {
		limit = a.opts.MaxVariants
	}

	assigned := make([]bool, limit)
	var clusters []Cluster
	for i := 0; i < limit; i++ {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		cluster := Cluster{
			ID:        len(clusters),
			Seed:      details[i].Key,
			Variants:  []string{details[i].Key},
			CaseCount: details[i].Count,
		}
		for j := i + 1; j < limit; j++ {
			if assigned[j] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, errors.ContextCanceled("variant clustering")
			}
			d := NormalizedDistance(details[i].Activities, details[j].Activities)
			if d <= a.opts.ClusterThreshold {
				assigned[j] = true
				cluster.Variants = append(cluster.Variants, details[j].Key)
				cluster.CaseCount += details[j].Count
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

// findDeviations classifies every non-happy-path variant.
func (a *Analyzer) findDeviations(details []Detail, happy *Detail) []Deviation {
	if happy == nil {
		return nil
	}

	happySet := make(map[string]bool, len(happy.Activities))
	for _, act := range happy.Activities {
		happySet[act] = true
	}

	var deviations []Deviation
	for _, d := range details {
		if d.Key == happy.Key {
			continue
		}

		variantSet := make(map[string]bool, len(d.Activities))
		for _, act := range d.Activities {
			variantSet[act] = true
		}

		var skipped, inserted []string
		for _, act := range happy.Activities {
			if !variantSet[act] && !containsString(skipped, act) {
				skipped = append(skipped, act)
			}
		}
		for _, act := range d.Activities {
			if !happySet[act] && !containsString(inserted, act) {
				inserted = append(inserted, act)
			}
		}

		var devType string
		switch {
		case len(skipped) > 0 && len(inserted) > 0:
			devType = DeviationSubstitution
		case len(skipped) > 0:
			devType = DeviationSkip
		case len(inserted) > 0:
			devType = DeviationInsertion
		default:
			devType = DeviationReorder
		}

		deviations = append(deviations, Deviation{
			Key:                d.Key,
			CaseCount:          d.Count,
			EditDistance:       EditDistance(happy.Activities, d.Activities),
			NormalizedDistance: stats.Round3(NormalizedDistance(happy.Activities, d.Activities)),
			SkippedActivities:  skipped,
			InsertedActivities: inserted,
			Type:               devType,
		})
	}
	return deviations
}

func splitVariantKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, eventlog.VariantSeparator)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
