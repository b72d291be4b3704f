package stats

import (
	"math"
	"testing"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
		want   Stats
	}{
		{
			name:   "empty",
			values: nil,
			want:   Stats{},
		},
		{
			name:   "single",
			values: []int64{100},
			want:   Stats{Count: 1, Mean: 100, Median: 100, Min: 100, Max: 100, P75: 100, P90: 100, P95: 100, P99: 100},
		},
		{
			name:   "five values",
			values: []int64{10, 20, 30, 40, 50},
			want: Stats{
				Count: 5, Mean: 30, Median: 30, Min: 10, Max: 50,
				StdDev: 16, // sample stddev sqrt(250)=15.81 rounds to 16
				P75:    40, P90: 50, P95: 50, P99: 50,
			},
		},
		{
			name:   "unsorted input",
			values: []int64{50, 10, 40, 20, 30},
			want: Stats{
				Count: 5, Mean: 30, Median: 30, Min: 10, Max: 50,
				StdDev: 16,
				P75:    40, P90: 50, P95: 50, P99: 50,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.values)
			if got != tt.want {
				t.Errorf("Describe(%v) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	sorted := []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	tests := []struct {
		q    float64
		want int64
	}{
		{0, 10},
		{0.5, 60},  // floor(10*0.5)=5 -> sorted[5]
		{0.75, 80}, // floor(7.5)=7
		{0.9, 100}, // floor(9)=9
		{0.99, 100},
		{1.0, 100}, // clamped
	}

	for _, tt := range tests {
		if got := Percentile(sorted, tt.q); got != tt.want {
			t.Errorf("Percentile(q=%v) = %d, want %d", tt.q, got, tt.want)
		}
	}
}

func TestSampleStdDev(t *testing.T) {
	if got := SampleStdDev([]int64{42}, 42); got != 0 {
		t.Errorf("stddev of one value = %v, want 0", got)
	}
	sample := []int64{2, 4, 4, 4, 5, 5, 7, 9}
	got := SampleStdDev(sample, Mean(sample))
	if math.Abs(got-2.138) > 0.001 {
		t.Errorf("stddev = %v, want ~2.138", got)
	}
}

func TestRounding(t *testing.T) {
	if got := Round2(66.6666); got != 66.67 {
		t.Errorf("Round2 = %v", got)
	}
	if got := Round3(0.95238); got != 0.952 {
		t.Errorf("Round3 = %v", got)
	}
	if got := Round2(12.3456); got != 12.35 {
		t.Errorf("Round2 = %v", got)
	}
}

func TestConfidenceInterval95(t *testing.T) {
	if ci := ConfidenceInterval95(nil); ci != nil {
		t.Fatalf("CI of empty input = %+v, want nil", ci)
	}

	// Small sample uses the Student-t table.
	small := []int64{100, 110, 120, 130, 140}
	ci := ConfidenceInterval95(small)
	if ci == nil {
		t.Fatal("CI of small sample is nil")
	}
	if ci.Level != 95 {
		t.Errorf("Level = %v", ci.Level)
	}
	if ci.Lower >= ci.Upper {
		t.Errorf("Lower %v >= Upper %v", ci.Lower, ci.Upper)
	}
	mean := Mean(small)
	if ci.Lower > mean || ci.Upper < mean {
		t.Errorf("interval [%v, %v] does not cover mean %v", ci.Lower, ci.Upper, mean)
	}

	// Large sample switches to z=1.96 and narrows.
	var large []int64
	for i := 0; i < 100; i++ {
		large = append(large, int64(100+i%20))
	}
	wide := ConfidenceInterval95(small)
	narrow := ConfidenceInterval95(large)
	if narrow.MarginOfError >= wide.MarginOfError {
		t.Errorf("large-sample margin %v not below small-sample margin %v",
			narrow.MarginOfError, wide.MarginOfError)
	}
}
