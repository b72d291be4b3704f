package performance

import (
	"sort"

	"github.com/procflow/procflow/pkg/stats"
)

// CaseDurationLabel is the synthetic SLA label for case cycle time.
const CaseDurationLabel = "__case_duration__"

// SLA severities and statuses.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	StatusMet      = "met"
	StatusAtRisk   = "at_risk"
	StatusBreached = "breached"
	StatusNoData   = "no_data"
)

// SLATarget is one compliance target.
type SLATarget struct {
	Target   float64 `yaml:"target" json:"target"`
	Unit     string  `yaml:"unit" json:"unit"` // ms, seconds, minutes, hours, days
	Severity string  `yaml:"severity" json:"severity"`
}

// SLAEntry is the evaluation of one target.
type SLAEntry struct {
	Label          string  `json:"label"`
	DisplayName    string  `json:"displayName"`
	TargetMs       int64   `json:"targetMs"`
	Severity       string  `json:"severity"`
	Total          int     `json:"total"`
	BreachCount    int     `json:"breachCount"`
	ComplianceRate float64 `json:"complianceRate"`
	Status         string  `json:"status"`
}

// SLAReport collects the SLA evaluations.
type SLAReport struct {
	Entries       []SLAEntry `json:"entries"`
	BreachedCount int        `json:"breachedCount"`
}

var unitToMillis = map[string]float64{
	"ms":      1,
	"seconds": 1000,
	"minutes": 60 * 1000,
	"hours":   60 * 60 * 1000,
	"days":    24 * 60 * 60 * 1000,
}

// checkSLA evaluates the configured targets. Breaches are counted only where
// raw observations exist: case durations. Transition targets keep their
// stats but no raw wait vectors, so they report zero breaches; an unseen
// transition reports no_data.
func (a *Analyzer) checkSLA(r *Result, durations []int64) *SLAReport {
	report := &SLAReport{}

	for label, target := range a.opts.SLATargets {
		factor, ok := unitToMillis[target.Unit]
		if !ok {
			factor = 1
		}
		entry := SLAEntry{
			Label:       label,
			DisplayName: label,
			TargetMs:    int64(target.Target * factor),
			Severity:    target.Severity,
		}

		if label == CaseDurationLabel {
			entry.DisplayName = "Case Duration"
			entry.Total = len(durations)
			for _, d := range durations {
				if d > entry.TargetMs {
					entry.BreachCount++
				}
			}
			entry.ComplianceRate = complianceRate(entry.BreachCount, entry.Total)
			entry.Status = slaStatus(entry.ComplianceRate)
		} else if ts, seen := r.TransitionStats[label]; seen {
			entry.Total = ts.Count
			entry.BreachCount = 0 // raw wait vectors are not retained
			entry.ComplianceRate = 100
			entry.Status = StatusMet
		} else {
			entry.Status = StatusNoData
		}

		if entry.Status == StatusBreached {
			report.BreachedCount++
		}
		report.Entries = append(report.Entries, entry)
	}

	sortSLAEntries(report.Entries)
	return report
}

func complianceRate(breaches, total int) float64 {
	if total == 0 {
		return 100
	}
	return stats.Round2((1 - float64(breaches)/float64(total)) * 100)
}

func slaStatus(rate float64) string {
	switch {
	case rate >= 95:
		return StatusMet
	case rate >= 80:
		return StatusAtRisk
	default:
		return StatusBreached
	}
}

func sortSLAEntries(entries []SLAEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Label < entries[j].Label
	})
}
