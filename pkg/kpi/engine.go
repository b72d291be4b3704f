package kpi

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/procflow/procflow/pkg/catalog"
	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/performance"
	"github.com/procflow/procflow/pkg/social"
	"github.com/procflow/procflow/pkg/stats"
	"github.com/procflow/procflow/pkg/variants"
)

// Inputs carries optional upstream analysis results. Absent inputs degrade
// the report gracefully instead of failing.
type Inputs struct {
	Variants      *variants.Result
	Performance   *performance.Result
	Social        *social.Result
	Conformance   *ConformanceResult
	ProcessConfig *catalog.ProcessConfig
}

// Automation resource name patterns.
var automationPrefixes = []string{"RFC_"}
var automationExact = []string{"SYSTEM", "BATCH"}

// Engine computes KPI reports.
type Engine struct{}

// NewEngine creates a KPI engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze builds the aggregate KPI report. Cancellation is polled between
// traces.
func (e *Engine) Analyze(ctx context.Context, log *eventlog.EventLog, in Inputs) (*Report, error) {
	report := &Report{
		CaseCount:   log.CaseCount(),
		EventCount:  log.EventCount(),
		Conformance: in.Conformance,
	}

	var durations, touchTimes, eventsPerCase []int64
	straightThrough, selfLoops, handovers, automatedEvents := 0, 0, 0, 0

	for _, t := range log.Traces() {
		if err := ctx.Err(); err != nil {
			return nil, errors.ContextCanceled("kpi analysis")
		}

		if len(t.Events) >= 2 {
			durations = append(durations, t.DurationMillis())
		}
		eventsPerCase = append(eventsPerCase, int64(len(t.Events)))

		var touch int64
		selfLoop := false
		seen := make(map[string]bool, len(t.Events))
		repeated := false
		for i, ev := range t.Events {
			if seen[ev.Activity] {
				repeated = true
			}
			seen[ev.Activity] = true

			if isAutomated(ev.Resource) {
				automatedEvents++
			}
			if i+1 < len(t.Events) {
				touch += t.Events[i+1].Timestamp.Sub(ev.Timestamp).Milliseconds()
				if t.Events[i+1].Activity == ev.Activity {
					selfLoop = true
				}
				if ev.Resource != "" && t.Events[i+1].Resource != "" && ev.Resource != t.Events[i+1].Resource {
					handovers++
				}
			}
		}
		if len(t.Events) >= 2 {
			touchTimes = append(touchTimes, touch)
		}
		if !repeated && len(t.Events) > 0 {
			straightThrough++
		}
		if selfLoop {
			selfLoops++
		}
	}

	report.Time = TimeKPIs{
		CycleTime:   stats.Describe(durations),
		CycleTimeCI: stats.ConfidenceInterval95(durations),
		TouchTime:   stats.Describe(touchTimes),
	}
	if len(eventsPerCase) > 0 {
		report.Time.ActivitiesPerCase = stats.Round2(stats.Mean(eventsPerCase))
	}
	if in.Performance != nil && len(in.Performance.Bottlenecks) > 0 {
		top := in.Performance.Bottlenecks[0]
		report.Time.TopBottleneck = &top
	}

	report.Quality = e.qualityKPIs(log, in, straightThrough, selfLoops)
	report.Volume = e.volumeKPIs(log, in)
	report.Resource = e.resourceKPIs(log, in, handovers, automatedEvents)
	if in.ProcessConfig != nil {
		report.Process = e.processKPIs(log, in.ProcessConfig)
	}

	return report, nil
}

func (e *Engine) qualityKPIs(log *eventlog.EventLog, in Inputs, straightThrough, selfLoops int) QualityKPIs {
	q := QualityKPIs{FirstTimeRightRate: 100}
	total := log.CaseCount()

	if in.Variants != nil {
		q.ReworkRate = in.Variants.Rework.ReworkRate
		q.FirstTimeRightRate = in.Variants.Rework.FirstTimeRightRate
		q.HappyPathRate = in.Variants.ConformantRate
		q.VariantCount = in.Variants.TotalVariantCount
	} else {
		q.VariantCount = len(log.Variants())
		withRework := 0
		for _, t := range log.Traces() {
			if t.HasRework() {
				withRework++
			}
		}
		if total > 0 {
			q.ReworkRate = stats.Round2(float64(withRework) / float64(total) * 100)
			q.FirstTimeRightRate = stats.Round2(100 - q.ReworkRate)
		}
	}

	if total > 0 {
		q.StraightThroughRate = stats.Round2(float64(straightThrough) / float64(total) * 100)
		q.SelfLoopRate = stats.Round2(float64(selfLoops) / float64(total) * 100)
	}
	return q
}

func (e *Engine) volumeKPIs(log *eventlog.EventLog, in Inputs) VolumeKPIs {
	v := VolumeKPIs{
		CaseCount:         log.CaseCount(),
		EventCount:        log.EventCount(),
		ActivityTypes:     len(log.ActivitySet()),
		AvgWorkInProgress: avgWorkInProgress(log),
	}
	if in.Performance != nil {
		tp := in.Performance.Throughput
		v.Throughput = &tp
	}
	return v
}

func (e *Engine) resourceKPIs(log *eventlog.EventLog, in Inputs, handovers, automatedEvents int) ResourceKPIs {
	r := ResourceKPIs{ResourceCount: len(log.ResourceSet())}

	if total := log.CaseCount(); total > 0 {
		r.AvgHandoversPerCase = stats.Round2(float64(handovers) / float64(total))
	}
	if events := log.EventCount(); events > 0 {
		r.AutomationRate = stats.Round2(float64(automatedEvents) / float64(events) * 100)
	}
	if in.Social != nil {
		violations := in.Social.SoD.TotalViolations
		r.SoDViolations = &violations
		balance := in.Social.Utilization.WorkloadBalance
		r.WorkloadBalance = &balance
	}
	return r
}

// avgWorkInProgress samples case concurrency at fixed points across the
// log's span.
func avgWorkInProgress(log *eventlog.EventLog) float64 {
	traces := log.Traces()
	tr := log.TimeRange()
	if len(traces) == 0 || tr.Start.IsZero() || !tr.End.After(tr.Start) {
		if len(traces) > 0 && !tr.Start.IsZero() {
			return float64(len(traces))
		}
		return 0
	}

	const sampleCount = 20
	span := tr.End.Sub(tr.Start)
	step := span / sampleCount
	total := 0
	for i := 0; i < sampleCount; i++ {
		at := tr.Start.Add(time.Duration(i) * step)
		open := 0
		for _, t := range traces {
			if len(t.Events) == 0 {
				continue
			}
			if !t.Start().After(at) && !t.End().Before(at) {
				open++
			}
		}
		total += open
	}
	return stats.Round2(float64(total) / sampleCount)
}

func isAutomated(resource string) bool {
	if resource == "" {
		return false
	}
	upper := strings.ToUpper(resource)
	for _, exact := range automationExact {
		if upper == exact {
			return true
		}
	}
	for _, prefix := range automationPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// processKPIs evaluates the process config's KPI specs against the log.
func (e *Engine) processKPIs(log *eventlog.EventLog, cfg *catalog.ProcessConfig) []ProcessKPI {
	names := make([]string, 0, len(cfg.KPIs))
	for name := range cfg.KPIs {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []ProcessKPI
	for _, name := range names {
		spec := cfg.KPIs[name]
		switch spec.Type {
		case "ratio":
			out = append(out, e.ratioKPI(log, name, spec))
		default:
			out = append(out, e.transitionKPI(log, name, spec))
		}
	}
	return out
}

// transitionKPI measures the median interval between two activities across
// cases where both occur, and the share of those cases within target.
func (e *Engine) transitionKPI(log *eventlog.EventLog, name string, spec catalog.KPISpec) ProcessKPI {
	k := ProcessKPI{
		Name: name, Type: "transition",
		From: spec.From, To: spec.To,
		Target: spec.Target, Unit: spec.Unit,
		TargetMs: targetMillis(spec.Target, spec.Unit),
	}

	var intervals []int64
	within := 0
	for _, t := range log.Traces() {
		var fromAt, toAt time.Time
		for _, ev := range t.Events {
			if ev.Activity == spec.From && fromAt.IsZero() {
				fromAt = ev.Timestamp
			}
			if ev.Activity == spec.To && !fromAt.IsZero() && toAt.IsZero() {
				toAt = ev.Timestamp
			}
		}
		if fromAt.IsZero() || toAt.IsZero() {
			continue
		}
		interval := toAt.Sub(fromAt).Milliseconds()
		intervals = append(intervals, interval)
		if interval <= k.TargetMs {
			within++
		}
	}

	k.CaseCount = len(intervals)
	if len(intervals) > 0 {
		k.MedianMs = stats.Describe(intervals).Median
		k.Value = float64(k.MedianMs)
		k.CompliancePct = stats.Round2(float64(within) / float64(len(intervals)) * 100)
	}
	return k
}

// ratioKPI relates two activity occurrence counts as a percentage.
func (e *Engine) ratioKPI(log *eventlog.EventLog, name string, spec catalog.KPISpec) ProcessKPI {
	k := ProcessKPI{
		Name: name, Type: "ratio",
		Numerator: spec.Numerator, Denominator: spec.Denominator,
		Target: spec.Target,
	}

	numerator, denominator := 0, 0
	for _, t := range log.Traces() {
		for _, ev := range t.Events {
			switch ev.Activity {
			case spec.Numerator:
				numerator++
			case spec.Denominator:
				denominator++
			}
		}
	}
	if denominator > 0 {
		k.Value = stats.Round2(float64(numerator) / float64(denominator) * 100)
		if k.Value <= spec.Target {
			k.CompliancePct = 100
		}
	}
	return k
}

var kpiUnitMillis = map[string]int64{
	"ms":      1,
	"seconds": 1000,
	"minutes": 60 * 1000,
	"hours":   60 * 60 * 1000,
	"days":    24 * 60 * 60 * 1000,
}

func targetMillis(target float64, unit string) int64 {
	factor, ok := kpiUnitMillis[unit]
	if !ok {
		factor = 1
	}
	return int64(target * float64(factor))
}
