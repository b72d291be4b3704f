package export

import (
	"strings"
	"testing"

	"github.com/procflow/procflow/pkg/discovery"
	"github.com/procflow/procflow/pkg/eventlog"
)

func sampleModel() *discovery.ProcessModel {
	return &discovery.ProcessModel{
		Activities: []string{"Approve", "Close", "Register"},
		Edges: []discovery.Edge{
			{Source: "Register", Target: "Approve", Frequency: 10, Dependency: 0.909},
			{Source: "Approve", Target: "Close", Frequency: 10, Dependency: 0.909},
		},
		StartActivities: []eventlog.ActivityCount{{Activity: "Register", Count: 10}},
		EndActivities:   []eventlog.ActivityCount{{Activity: "Close", Count: 10}},
		LoopsL1:         []discovery.LoopL1{{Activity: "Approve", Frequency: 3, Dependency: 0.75}},
	}
}

func TestToDOT(t *testing.T) {
	out := ToDOT(sampleModel(), DefaultDOTOptions())

	for _, frag := range []string{
		`digraph "process" {`,
		`"Register" [label="Register", penwidth=2];`,
		`"Close" [label="Close", style="rounded,filled", fillcolor="#EEEEEE"];`,
		`"Register" -> "Approve" [label="10 (0.91)"];`,
		`"Approve" -> "Approve" [label="3", style=dashed];`,
		"}\n",
	} {
		if !strings.Contains(out, frag) {
			t.Errorf("DOT output missing %s\n%s", frag, out)
		}
	}
}

func TestToDOTWithoutLabels(t *testing.T) {
	opts := DOTOptions{GraphName: "claims", EdgeLabels: false}
	out := ToDOT(sampleModel(), opts)

	if !strings.Contains(out, `digraph "claims" {`) {
		t.Error("graph name not applied")
	}
	if !strings.Contains(out, `"Register" -> "Approve";`) {
		t.Errorf("plain edge missing:\n%s", out)
	}
	if strings.Contains(out, "(0.91)") {
		t.Error("edge labels rendered despite being disabled")
	}
}

func TestToDOTEdgeOrderDeterministic(t *testing.T) {
	a := ToDOT(sampleModel(), DefaultDOTOptions())
	b := ToDOT(sampleModel(), DefaultDOTOptions())
	if a != b {
		t.Error("rendering is not deterministic")
	}
	if strings.Index(a, `"Approve" -> "Close"`) > strings.Index(a, `"Register" -> "Approve"`) {
		t.Error("edges not sorted by source")
	}
}
