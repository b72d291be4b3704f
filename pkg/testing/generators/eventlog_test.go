package generators

import (
	"testing"
	"time"

	"github.com/procflow/procflow/pkg/eventlog"
)

func TestGenerateDeterministicBySeed(t *testing.T) {
	a, err := NewLogGenerator(7).Generate(50)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := NewLogGenerator(7).Generate(50)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if a.CaseCount() != 50 || b.CaseCount() != 50 {
		t.Fatalf("case counts = %d, %d, want 50", a.CaseCount(), b.CaseCount())
	}
	if a.EventCount() != b.EventCount() {
		t.Errorf("event counts differ: %d vs %d", a.EventCount(), b.EventCount())
	}

	va := a.Variants()
	vb := b.Variants()
	if len(va) != len(vb) {
		t.Fatalf("variant counts differ: %d vs %d", len(va), len(vb))
	}
	for i := range va {
		if va[i].Key != vb[i].Key || va[i].Count != vb[i].Count {
			t.Errorf("variant %d differs: %+v vs %+v", i, va[i], vb[i])
		}
	}
}

func TestGenerateVariantMix(t *testing.T) {
	g := NewLogGenerator(1)
	log, err := g.Generate(200)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	variants := log.Variants()
	if len(variants) < 2 {
		t.Fatalf("got %d variants, want a mix", len(variants))
	}

	// The happy path carries weight 60 of 100 and should dominate.
	happy := "Create Sales Order" + eventlog.VariantSeparator +
		"Create Delivery" + eventlog.VariantSeparator +
		"Goods Issue" + eventlog.VariantSeparator +
		"Create Invoice" + eventlog.VariantSeparator +
		"Clear Invoice"
	if variants[0].Key != happy {
		t.Errorf("top variant = %q, want happy path", variants[0].Key)
	}
	if variants[0].Count < 80 {
		t.Errorf("happy path count = %d, want at least 80 of 200", variants[0].Count)
	}
}

func TestGenerateReworkInjection(t *testing.T) {
	g := NewLogGenerator(3)
	g.Paths = []PathSpec{{Activities: []string{"A", "B", "C", "D"}, Weight: 1}}
	g.ReworkRate = 1.0

	log, err := g.Generate(10)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, caseID := range log.CaseIDs() {
		trace := log.Trace(caseID)
		if len(trace.Events) != 5 {
			t.Errorf("case %s has %d events, want 5 after rework", caseID, len(trace.Events))
			continue
		}
		seen := false
		for i := 1; i < len(trace.Events); i++ {
			if trace.Events[i].Activity == trace.Events[i-1].Activity {
				seen = true
			}
		}
		if !seen {
			t.Errorf("case %s has no repeated activity", caseID)
		}
	}
}

func TestGenerateTimestampsOrdered(t *testing.T) {
	g := NewLogGenerator(11)
	g.MinStep = 5 * time.Minute
	g.MaxStep = time.Hour

	log, err := g.Generate(20)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, caseID := range log.CaseIDs() {
		trace := log.Trace(caseID)
		for i := 1; i < len(trace.Events); i++ {
			if trace.Events[i].Timestamp.Before(trace.Events[i-1].Timestamp) {
				t.Fatalf("case %s events out of order", caseID)
			}
		}
	}
}

func TestGenerateUUIDCaseIDs(t *testing.T) {
	g := NewLogGenerator(5)
	g.UUIDCaseIDs = true

	log, err := g.Generate(5)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, caseID := range log.CaseIDs() {
		if len(caseID) != 36 {
			t.Errorf("case id %q does not look like a UUID", caseID)
		}
	}
}

func TestGenerateEmpty(t *testing.T) {
	g := NewLogGenerator(1)
	log, err := g.Generate(0)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if log.CaseCount() != 0 {
		t.Errorf("CaseCount = %d, want 0", log.CaseCount())
	}

	g.Paths = nil
	log, err = g.Generate(10)
	if err != nil {
		t.Fatalf("Generate with no paths: %v", err)
	}
	if log.CaseCount() != 0 {
		t.Errorf("CaseCount = %d, want 0 with no paths", log.CaseCount())
	}
}
