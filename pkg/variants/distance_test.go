package variants

import "testing"

func TestEditDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []string{"A", "B"}, nil, 2},
		{"identical", []string{"A", "B", "C"}, []string{"A", "B", "C"}, 0},
		{"single substitution", []string{"A", "B", "C"}, []string{"A", "X", "C"}, 1},
		{"single insertion", []string{"A", "B", "C"}, []string{"A", "B", "B", "C"}, 1},
		{"single deletion", []string{"A", "B", "C"}, []string{"A", "C"}, 1},
		{"adjacent swap", []string{"A", "B", "C", "D"}, []string{"A", "C", "B", "D"}, 2},
		{"disjoint", []string{"A", "B"}, []string{"X", "Y", "Z"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EditDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("EditDistance = %d, want %d", got, tt.want)
			}
			if rev := EditDistance(tt.b, tt.a); rev != tt.want {
				t.Errorf("EditDistance reversed = %d, want %d", rev, tt.want)
			}
		})
	}
}

func TestNormalizedDistance(t *testing.T) {
	if d := NormalizedDistance(nil, nil); d != 0 {
		t.Errorf("both empty = %v", d)
	}
	if d := NormalizedDistance([]string{"A", "B"}, nil); d != 1 {
		t.Errorf("one empty = %v", d)
	}
	if d := NormalizedDistance([]string{"A", "B", "C", "D"}, []string{"A", "X", "C", "D"}); d != 0.25 {
		t.Errorf("one of four = %v", d)
	}
	if d := NormalizedDistance([]string{"A"}, []string{"A", "B", "C", "D"}); d != 0.75 {
		t.Errorf("padding = %v", d)
	}
}
