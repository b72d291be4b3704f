// Package stats implements the descriptive statistics block shared by the
// analyzers. All duration statistics are integer milliseconds; percentiles
// use the index floor(n*q) clamped to the last element.
package stats

import (
	"math"
	"sort"
)

// Stats is the descriptive summary of a sample of integer-millisecond values.
type Stats struct {
	Count  int   `json:"count"`
	Mean   int64 `json:"mean"`
	Median int64 `json:"median"`
	Min    int64 `json:"min"`
	Max    int64 `json:"max"`
	StdDev int64 `json:"stddev"`
	P75    int64 `json:"p75"`
	P90    int64 `json:"p90"`
	P95    int64 `json:"p95"`
	P99    int64 `json:"p99"`
}

// Describe computes the descriptive block over samples.
// An empty sample yields the zero value.
func Describe(samples []int64) Stats {
	n := len(samples)
	if n == 0 {
		return Stats{}
	}

	sorted := make([]int64, n)
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}
	mean := float64(sum) / float64(n)

	return Stats{
		Count:  n,
		Mean:   int64(math.Round(mean)),
		Median: Percentile(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[n-1],
		StdDev: int64(math.Round(SampleStdDev(sorted, mean))),
		P75:    Percentile(sorted, 0.75),
		P90:    Percentile(sorted, 0.90),
		P95:    Percentile(sorted, 0.95),
		P99:    Percentile(sorted, 0.99),
	}
}

// Percentile returns sorted[floor(n*q)], clamped to the last element.
// The input must already be sorted ascending.
func Percentile(sorted []int64, q float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * q))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// SampleStdDev computes the sample standard deviation (n-1 denominator).
// Returns 0 for samples of size < 2.
func SampleStdDev(samples []int64, mean float64) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}
	var ss float64
	for _, v := range samples {
		d := float64(v) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Mean returns the arithmetic mean of samples, 0 when empty.
func Mean(samples []int64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, v := range samples {
		sum += v
	}
	return float64(sum) / float64(len(samples))
}

// Round2 rounds to two decimal places. Percentages use this everywhere.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to three decimal places. Dependency measures use this.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ConfidenceInterval is a two-sided interval around a sample mean.
type ConfidenceInterval struct {
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	Level         float64 `json:"level"`
	MarginOfError float64 `json:"marginOfError"`
}

// Two-sided 95% Student t critical values indexed by degrees of freedom 1..29.
var t95 = [...]float64{
	12.706, 4.303, 3.182, 2.776, 2.571, 2.447, 2.365, 2.306, 2.262, 2.228,
	2.201, 2.179, 2.160, 2.145, 2.131, 2.120, 2.110, 2.101, 2.093, 2.086,
	2.080, 2.074, 2.069, 2.064, 2.060, 2.056, 2.052, 2.048, 2.045,
}

// ConfidenceInterval95 computes a 95% CI over samples.
// Returns nil for empty samples. Uses z=1.96 for n >= 30 and the Student t
// distribution for smaller samples.
func ConfidenceInterval95(samples []int64) *ConfidenceInterval {
	n := len(samples)
	if n == 0 {
		return nil
	}
	mean := Mean(samples)
	sd := SampleStdDev(samples, mean)

	var crit float64
	if n >= 30 {
		crit = 1.96
	} else if n >= 2 {
		crit = t95[n-2] // df = n-1
	}

	margin := crit * sd / math.Sqrt(float64(n))
	return &ConfidenceInterval{
		Lower:         Round2(mean - margin),
		Upper:         Round2(mean + margin),
		Level:         95,
		MarginOfError: Round2(margin),
	}
}
