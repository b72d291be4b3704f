package performance

import (
	"time"

	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// CasesPerDay summarizes the per-UTC-day case arrival counts.
type CasesPerDay struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// Throughput describes case arrival behaviour.
type Throughput struct {
	TotalCases        int         `json:"totalCases"`
	TimeRangeMs       int64       `json:"timeRangeMs"`
	ArrivalRatePerDay float64     `json:"arrivalRatePerDay"`
	CasesPerDay       CasesPerDay `json:"casesPerDay"`
}

const millisPerDay = 24 * 60 * 60 * 1000

// computeThroughput aggregates case starts. With one case or fewer, the
// arrival rate and the per-day stats are zero.
func computeThroughput(log *eventlog.EventLog) Throughput {
	var starts []time.Time
	for _, t := range log.Traces() {
		if len(t.Events) > 0 {
			starts = append(starts, t.Start())
		}
	}

	tp := Throughput{TotalCases: len(starts)}
	if len(starts) <= 1 {
		return tp
	}

	first, last := starts[0], starts[0]
	perDay := make(map[string]int)
	for _, s := range starts {
		if s.Before(first) {
			first = s
		}
		if s.After(last) {
			last = s
		}
		perDay[s.UTC().Format("2006-01-02")]++
	}

	tp.TimeRangeMs = last.Sub(first).Milliseconds()
	days := float64(tp.TimeRangeMs) / millisPerDay
	if days < 1 {
		days = 1
	}
	tp.ArrivalRatePerDay = stats.Round2(float64(len(starts)) / days)

	minCount, maxCount, total := 0, 0, 0
	firstDay := true
	for _, c := range perDay {
		if firstDay || c < minCount {
			minCount = c
		}
		if firstDay || c > maxCount {
			maxCount = c
		}
		firstDay = false
		total += c
	}
	tp.CasesPerDay = CasesPerDay{
		Min:  minCount,
		Max:  maxCount,
		Mean: stats.Round2(float64(total) / float64(len(perDay))),
	}
	return tp
}
