package performance

import (
	"sort"

	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// Outlier labels.
const (
	OutlierSlow = "slow"
	OutlierFast = "fast"
)

// Outlier is one case outside the IQR fences.
type Outlier struct {
	CaseID              string  `json:"caseId"`
	DurationMs          int64   `json:"durationMs"`
	Label               string  `json:"label"`
	DeviationFromMedian float64 `json:"deviationFromMedian"`
}

// detectOutliers applies the 1.5 IQR rule to case durations.
func detectOutliers(log *eventlog.EventLog, caseDurations map[string]int64) []Outlier {
	if len(caseDurations) < 4 {
		return nil
	}

	sorted := make([]int64, 0, len(caseDurations))
	for _, d := range caseDurations {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	q1 := stats.Percentile(sorted, 0.25)
	q3 := stats.Percentile(sorted, 0.75)
	iqr := q3 - q1
	lower := float64(q1) - 1.5*float64(iqr)
	upper := float64(q3) + 1.5*float64(iqr)
	median := stats.Percentile(sorted, 0.5)

	var out []Outlier
	for _, caseID := range log.CaseIDs() {
		d, ok := caseDurations[caseID]
		if !ok {
			continue
		}
		var label string
		switch {
		case float64(d) > upper:
			label = OutlierSlow
		case float64(d) < lower:
			label = OutlierFast
		default:
			continue
		}
		deviation := 0.0
		if median != 0 {
			deviation = stats.Round2((float64(d) - float64(median)) / float64(median) * 100)
		}
		out = append(out, Outlier{
			CaseID:              caseID,
			DurationMs:          d,
			Label:               label,
			DeviationFromMedian: deviation,
		})
	}
	return out
}
