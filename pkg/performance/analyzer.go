// Package performance implements cycle/wait/service time analysis,
// bottleneck ranking, throughput, SLA compliance, trends and outliers.
package performance

import (
	"context"
	"sort"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// TransitionSeparator joins two activities into a transition key.
const TransitionSeparator = " → "

// TransitionKey builds the canonical "A → B" key.
func TransitionKey(from, to string) string {
	return from + TransitionSeparator + to
}

// Options configures the analyzer.
type Options struct {
	// SLATargets maps a label to its target. The label __case_duration__
	// applies to case cycle times; any other label must be a transition key.
	SLATargets map[string]SLATarget `yaml:"sla_targets" json:"slaTargets,omitempty"`
	// TrendThresholdPct is the minimum relative change in bucket medians
	// treated as a trend, as a percentage of the overall median.
	TrendThresholdPct float64 `yaml:"trend_threshold_pct" json:"trendThresholdPct"`
	// TopBottlenecks bounds the bottleneck ranking.
	TopBottlenecks int `yaml:"top_bottlenecks" json:"topBottlenecks"`
}

// DefaultOptions returns the standard analyzer options.
func DefaultOptions() Options {
	return Options{
		TrendThresholdPct: 5,
		TopBottlenecks:    10,
	}
}

// ActivityStat summarizes one activity.
type ActivityStat struct {
	Count            int         `json:"count"`
	ServiceTimeStats stats.Stats `json:"serviceTimeStats"`
	ResourceCount    int         `json:"resourceCount"`
}

// TransitionStat summarizes one directly-followed activity pair.
type TransitionStat struct {
	Count         int         `json:"count"`
	WaitTimeStats stats.Stats `json:"waitTimeStats"`
}

// Bottleneck types.
const (
	BottleneckTransition = "transition"
	BottleneckActivity   = "activity"
)

// Bottleneck is one ranked wait point.
type Bottleneck struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	MedianMs int64  `json:"medianMs"`
	Count    int    `json:"count"`
	ImpactMs int64  `json:"impactMs"`
}

// Result is the full performance analysis.
type Result struct {
	CaseCount         int                       `json:"caseCount"`
	EventCount        int                       `json:"eventCount"`
	CaseDurationStats stats.Stats               `json:"caseDurationStats"`
	ActivityStats     map[string]ActivityStat   `json:"activityStats"`
	TransitionStats   map[string]TransitionStat `json:"transitionStats"`
	Bottlenecks       []Bottleneck              `json:"bottlenecks"`
	Throughput        Throughput                `json:"throughput"`
	SLA               *SLAReport                `json:"sla,omitempty"`
	Trend             TrendReport               `json:"trend"`
	Outliers          []Outlier                 `json:"outliers"`

	caseDurations map[string]int64
}

// Summary returns a compact description of the analysis.
func (r *Result) Summary() map[string]interface{} {
	top := ""
	if len(r.Bottlenecks) > 0 {
		top = r.Bottlenecks[0].Name
	}
	return map[string]interface{}{
		"cases":         r.CaseCount,
		"events":        r.EventCount,
		"medianCycleMs": r.CaseDurationStats.Median,
		"topBottleneck": top,
		"trend":         r.Trend.Trend,
		"outliers":      len(r.Outliers),
		"arrivalPerDay": r.Throughput.ArrivalRatePerDay,
	}
}

// Analyzer runs performance analysis over an event log.
type Analyzer struct {
	opts Options
}

// New creates a performance analyzer.
func New(opts Options) *Analyzer {
	if opts.TrendThresholdPct == 0 {
		opts.TrendThresholdPct = 5
	}
	if opts.TopBottlenecks == 0 {
		opts.TopBottlenecks = 10
	}
	return &Analyzer{opts: opts}
}

// Analyze computes the full performance analysis. Cancellation is polled
// between traces.
func (a *Analyzer) Analyze(ctx context.Context, log *eventlog.EventLog) (*Result, error) {
	result := &Result{
		CaseCount:       log.CaseCount(),
		EventCount:      log.EventCount(),
		ActivityStats:   make(map[string]ActivityStat),
		TransitionStats: make(map[string]TransitionStat),
		caseDurations:   make(map[string]int64),
	}

	type activityAccum struct {
		count        int
		serviceTimes []int64
		resources    map[string]bool
	}
	activityAcc := make(map[string]*activityAccum)
	transitionAcc := make(map[string][]int64)

	var durations []int64
	for _, t := range log.Traces() {
		if err := ctx.Err(); err != nil {
			return nil, errors.ContextCanceled("performance analysis")
		}

		if len(t.Events) >= 2 {
			d := t.DurationMillis()
			if d >= 0 {
				durations = append(durations, d)
				result.caseDurations[t.CaseID] = d
			}
		}

		for i, e := range t.Events {
			acc := activityAcc[e.Activity]
			if acc == nil {
				acc = &activityAccum{resources: make(map[string]bool)}
				activityAcc[e.Activity] = acc
			}
			acc.count++
			if e.Resource != "" {
				acc.resources[e.Resource] = true
			}

			if i+1 < len(t.Events) {
				delta := t.Events[i+1].Timestamp.Sub(e.Timestamp).Milliseconds()
				acc.serviceTimes = append(acc.serviceTimes, delta)
				key := TransitionKey(e.Activity, t.Events[i+1].Activity)
				transitionAcc[key] = append(transitionAcc[key], delta)
			}
		}
	}

	result.CaseDurationStats = stats.Describe(durations)

	for activity, acc := range activityAcc {
		result.ActivityStats[activity] = ActivityStat{
			Count:            acc.count,
			ServiceTimeStats: stats.Describe(acc.serviceTimes),
			ResourceCount:    len(acc.resources),
		}
	}
	for key, waits := range transitionAcc {
		result.TransitionStats[key] = TransitionStat{
			Count:         len(waits),
			WaitTimeStats: stats.Describe(waits),
		}
	}

	result.Bottlenecks = a.rankBottlenecks(result)
	result.Throughput = computeThroughput(log)
	if len(a.opts.SLATargets) > 0 {
		result.SLA = a.checkSLA(result, durations)
	}
	result.Trend = a.analyzeTrend(log, result.CaseDurationStats)
	result.Outliers = detectOutliers(log, result.caseDurations)

	return result, nil
}

// rankBottlenecks unions transition and activity wait points by impact.
func (a *Analyzer) rankBottlenecks(r *Result) []Bottleneck {
	var out []Bottleneck
	for key, ts := range r.TransitionStats {
		out = append(out, Bottleneck{
			Name:     key,
			Type:     BottleneckTransition,
			MedianMs: ts.WaitTimeStats.Median,
			Count:    ts.Count,
			ImpactMs: ts.WaitTimeStats.Median * int64(ts.Count),
		})
	}
	for activity, as := range r.ActivityStats {
		out = append(out, Bottleneck{
			Name:     activity,
			Type:     BottleneckActivity,
			MedianMs: as.ServiceTimeStats.Median,
			Count:    as.Count,
			ImpactMs: as.ServiceTimeStats.Median * int64(as.Count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ImpactMs != out[j].ImpactMs {
			return out[i].ImpactMs > out[j].ImpactMs
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > a.opts.TopBottlenecks {
		out = out[:a.opts.TopBottlenecks]
	}
	return out
}
