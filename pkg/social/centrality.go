package social

import (
	"sort"

	"github.com/procflow/procflow/pkg/stats"
)

// CentralityEntry scores one resource's position in the handover graph.
type CentralityEntry struct {
	Resource        string  `json:"resource"`
	InDegree        int     `json:"inDegree"`
	OutDegree       int     `json:"outDegree"`
	TotalDegree     int     `json:"totalDegree"`
	InVolume        int     `json:"inVolume"`
	OutVolume       int     `json:"outVolume"`
	TotalVolume     int     `json:"totalVolume"`
	CentralityScore float64 `json:"centralityScore"`
}

// computeCentrality scores resources on the handover graph. The score is an
// equal-weight combination of normalized degree and normalized volume.
func computeCentrality(handover map[string]map[string]int) []CentralityEntry {
	acc := make(map[string]*CentralityEntry)
	get := func(resource string) *CentralityEntry {
		e := acc[resource]
		if e == nil {
			e = &CentralityEntry{Resource: resource}
			acc[resource] = e
		}
		return e
	}

	for from, targets := range handover {
		for to, count := range targets {
			src := get(from)
			src.OutDegree++
			src.OutVolume += count
			dst := get(to)
			dst.InDegree++
			dst.InVolume += count
		}
	}

	maxDegree, maxVolume := 0, 0
	for _, e := range acc {
		e.TotalDegree = e.InDegree + e.OutDegree
		e.TotalVolume = e.InVolume + e.OutVolume
		if e.TotalDegree > maxDegree {
			maxDegree = e.TotalDegree
		}
		if e.TotalVolume > maxVolume {
			maxVolume = e.TotalVolume
		}
	}

	out := make([]CentralityEntry, 0, len(acc))
	for _, e := range acc {
		score := 0.0
		if maxDegree > 0 {
			score += 0.5 * float64(e.TotalDegree) / float64(maxDegree)
		}
		if maxVolume > 0 {
			score += 0.5 * float64(e.TotalVolume) / float64(maxVolume)
		}
		e.CentralityScore = stats.Round3(score)
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CentralityScore != out[j].CentralityScore {
			return out[i].CentralityScore > out[j].CentralityScore
		}
		return out[i].Resource < out[j].Resource
	})
	return out
}
