package eventlog

import (
	"sort"
	"time"

	"github.com/procflow/procflow/pkg/errors"
)

// Trace is the timestamp-ordered event sequence of one case.
type Trace struct {
	CaseID     string
	Events     []*Event
	Attributes Attributes
}

// NewTrace constructs an empty trace for caseID.
func NewTrace(caseID string) (*Trace, error) {
	if caseID == "" {
		return nil, errors.InvalidInput("trace caseId must be non-empty")
	}
	return &Trace{CaseID: caseID}, nil
}

// Append inserts the event keeping chronological order. Insertion is stable:
// an event whose timestamp equals existing ones is placed after them.
func (t *Trace) Append(e *Event) error {
	if e == nil {
		return errors.InvalidInput("event must not be nil")
	}

	// Fast path: new timestamp is not earlier than the last event.
	if n := len(t.Events); n == 0 || !e.Timestamp.Before(t.Events[n-1].Timestamp) {
		t.Events = append(t.Events, e)
		return nil
	}

	// Binary search for the first index whose timestamp is after e's;
	// splicing there keeps equal timestamps in insertion order.
	idx := sort.Search(len(t.Events), func(i int) bool {
		return t.Events[i].Timestamp.After(e.Timestamp)
	})
	t.Events = append(t.Events, nil)
	copy(t.Events[idx+1:], t.Events[idx:])
	t.Events[idx] = e
	return nil
}

// Start returns the timestamp of the first event, zero when empty.
func (t *Trace) Start() time.Time {
	if len(t.Events) == 0 {
		return time.Time{}
	}
	return t.Events[0].Timestamp
}

// End returns the timestamp of the last event, zero when empty.
func (t *Trace) End() time.Time {
	if len(t.Events) == 0 {
		return time.Time{}
	}
	return t.Events[len(t.Events)-1].Timestamp
}

// DurationMillis returns the case cycle time in integer milliseconds.
func (t *Trace) DurationMillis() int64 {
	if len(t.Events) < 2 {
		return 0
	}
	return t.End().Sub(t.Start()).Milliseconds()
}

// ActivitySequence returns the ordered activity names.
func (t *Trace) ActivitySequence() []string {
	seq := make([]string, len(t.Events))
	for i, e := range t.Events {
		seq[i] = e.Activity
	}
	return seq
}

// VariantKey joins the activity sequence with the canonical separator.
func (t *Trace) VariantKey() string {
	return VariantKey(t.ActivitySequence())
}

// HasRework reports whether any activity occurs more than once.
func (t *Trace) HasRework() bool {
	seen := make(map[string]bool, len(t.Events))
	for _, e := range t.Events {
		if seen[e.Activity] {
			return true
		}
		seen[e.Activity] = true
	}
	return false
}

// Resources returns the distinct resources observed in the trace.
func (t *Trace) Resources() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range t.Events {
		if e.Resource != "" && !seen[e.Resource] {
			seen[e.Resource] = true
			out = append(out, e.Resource)
		}
	}
	return out
}

// Clone returns a deep, independent copy of the trace.
func (t *Trace) Clone() *Trace {
	out := &Trace{
		CaseID:     t.CaseID,
		Attributes: t.Attributes.Clone(),
	}
	if len(t.Events) > 0 {
		out.Events = make([]*Event, len(t.Events))
		for i, e := range t.Events {
			out.Events[i] = e.Clone()
		}
	}
	return out
}
