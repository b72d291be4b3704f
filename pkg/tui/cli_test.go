package tui

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/procflow/procflow/pkg/discovery"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestPrintModelEdges(t *testing.T) {
	model := &discovery.ProcessModel{
		CaseCount:  42,
		EventCount: 168,
		Activities: []string{"Register", "Approve", "Close"},
		Edges: []discovery.Edge{
			{Source: "Register", Target: "Approve", Frequency: 40, Dependency: 0.976},
			{Source: "Approve", Target: "Close", Frequency: 38, Dependency: 0.974},
		},
	}

	out := captureStdout(t, func() { PrintModel(model) })

	for _, want := range []string{"Register", "Approve", "Close", "(40, dep 0.976)", "(38, dep 0.974)"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintModel output missing %q", want)
		}
	}
}

func TestPrintModelLoops(t *testing.T) {
	model := &discovery.ProcessModel{
		CaseCount:  5,
		EventCount: 20,
		LoopsL1:    []discovery.LoopL1{{Activity: "Clarify", Frequency: 3, Dependency: 0.75}},
	}

	out := captureStdout(t, func() { PrintModel(model) })
	if !strings.Contains(out, "1 self, 0 short") {
		t.Errorf("PrintModel output missing loop summary, got:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{90 * time.Second, "1m30s"},
		{150 * time.Minute, "2h30m"},
		{30 * time.Hour, "1d6h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{999, "999"},
		{1500, "1.5K"},
		{2500000, "2.5M"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.n); got != tt.want {
			t.Errorf("formatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestIndent(t *testing.T) {
	got := Indent("a\nb\n")
	if got != "  a\n  b" {
		t.Errorf("Indent = %q", got)
	}
}
