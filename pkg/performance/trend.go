package performance

import (
	"sort"
	"time"

	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// Trend directions.
const (
	TrendImproving = "improving"
	TrendDegrading = "degrading"
	TrendStable    = "stable"
)

// TrendPeriod is one calendar bucket of case durations.
type TrendPeriod struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CaseCount int       `json:"caseCount"`
	MedianMs  int64     `json:"medianMs"`
}

// TrendReport describes how case durations evolve over the log's span.
type TrendReport struct {
	Periods     []TrendPeriod `json:"periods"`
	PeriodCount int           `json:"periodCount"`
	Trend       string        `json:"trend"`
}

// analyzeTrend partitions cases by start time into equal-width buckets and
// classifies the slope of the per-bucket medians. At least 3 buckets are
// used when the span allows.
func (a *Analyzer) analyzeTrend(log *eventlog.EventLog, overall stats.Stats) TrendReport {
	type caseSample struct {
		start    time.Time
		duration int64
	}
	var samples []caseSample
	for _, t := range log.Traces() {
		if len(t.Events) < 2 {
			continue
		}
		d := t.DurationMillis()
		if d < 0 {
			continue
		}
		samples = append(samples, caseSample{start: t.Start(), duration: d})
	}

	report := TrendReport{Trend: TrendStable}
	if len(samples) < 3 {
		return report
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].start.Before(samples[j].start) })
	first := samples[0].start
	last := samples[len(samples)-1].start
	span := last.Sub(first)
	if span <= 0 {
		return report
	}

	bucketCount := 6
	if len(samples) < bucketCount {
		bucketCount = len(samples)
	}
	if bucketCount < 3 {
		bucketCount = 3
	}
	width := span / time.Duration(bucketCount)
	if width <= 0 {
		return report
	}

	buckets := make([][]int64, bucketCount)
	for _, s := range samples {
		idx := int(s.start.Sub(first) / width)
		if idx >= bucketCount {
			idx = bucketCount - 1
		}
		buckets[idx] = append(buckets[idx], s.duration)
	}

	var medians []float64
	for i, b := range buckets {
		st := stats.Describe(b)
		report.Periods = append(report.Periods, TrendPeriod{
			Start:     first.Add(time.Duration(i) * width),
			End:       first.Add(time.Duration(i+1) * width),
			CaseCount: len(b),
			MedianMs:  st.Median,
		})
		if len(b) > 0 {
			medians = append(medians, float64(st.Median))
		}
	}
	report.PeriodCount = len(report.Periods)

	if len(medians) < 2 || overall.Median == 0 {
		return report
	}

	slope := linearSlope(medians)
	change := slope * float64(len(medians)-1)
	threshold := float64(overall.Median) * a.opts.TrendThresholdPct / 100

	switch {
	case change > threshold:
		report.Trend = TrendDegrading
	case change < -threshold:
		report.Trend = TrendImproving
	default:
		report.Trend = TrendStable
	}
	return report
}

// linearSlope is the least-squares slope of ys over indices 0..n-1.
func linearSlope(ys []float64) float64 {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
