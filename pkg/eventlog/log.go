package eventlog

import (
	"sort"
	"strings"
	"time"

	"github.com/procflow/procflow/pkg/defaults/logging"
	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/interfaces"
	"github.com/procflow/procflow/pkg/stats"
)

// VariantSeparator joins activity names into a variant key.
const VariantSeparator = " -> "

// VariantKey builds the canonical variant key for an activity sequence.
func VariantKey(seq []string) string {
	return strings.Join(seq, VariantSeparator)
}

// Classifiers is the fixed classifier pair of every log.
type Classifiers struct {
	Activity string `json:"activity"`
	Resource string `json:"resource"`
}

// Extensions active on every log, in declaration order.
var StandardExtensions = []string{"concept", "time", "lifecycle", "organizational"}

// EventLog is an insertion-ordered collection of traces keyed by case id.
type EventLog struct {
	Name       string
	Attributes Attributes

	order  []string
	traces map[string]*Trace
	logger interfaces.Logger
}

// New constructs an empty event log. A nil logger falls back to the noop
// logger.
func New(name string, logger interfaces.Logger) *EventLog {
	if logger == nil {
		logger = logging.Noop()
	}
	return &EventLog{
		Name:   name,
		traces: make(map[string]*Trace),
		logger: logger,
	}
}

// Classifiers returns the fixed activity/resource classifier pair.
func (l *EventLog) Classifiers() Classifiers {
	return Classifiers{Activity: KeyConceptName, Resource: KeyResource}
}

// AddTrace inserts the trace, replacing and warning when the case id already
// exists.
func (l *EventLog) AddTrace(t *Trace) error {
	if t == nil {
		return errors.InvalidInput("trace must not be nil")
	}
	if t.CaseID == "" {
		return errors.InvalidInput("trace caseId must be non-empty")
	}
	if _, exists := l.traces[t.CaseID]; exists {
		l.logger.Warn("replacing existing trace", map[string]interface{}{"caseId": t.CaseID})
	} else {
		l.order = append(l.order, t.CaseID)
	}
	l.traces[t.CaseID] = t
	return nil
}

// AddEvent appends the event to the case's trace, creating the trace on
// first use.
func (l *EventLog) AddEvent(caseID string, e *Event) error {
	if caseID == "" {
		return errors.InvalidInput("caseId must be non-empty")
	}
	if e == nil {
		return errors.InvalidInput("event must not be nil")
	}
	trace, ok := l.traces[caseID]
	if !ok {
		trace = &Trace{CaseID: caseID}
		l.traces[caseID] = trace
		l.order = append(l.order, caseID)
	}
	return trace.Append(e)
}

// Trace returns the trace for caseID, nil when absent.
func (l *EventLog) Trace(caseID string) *Trace {
	return l.traces[caseID]
}

// Traces returns the traces in insertion order.
func (l *EventLog) Traces() []*Trace {
	out := make([]*Trace, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.traces[id])
	}
	return out
}

// CaseIDs returns the case identifiers in insertion order.
func (l *EventLog) CaseIDs() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// CaseCount returns the number of traces.
func (l *EventLog) CaseCount() int {
	return len(l.order)
}

// EventCount returns the total number of events across traces.
func (l *EventLog) EventCount() int {
	n := 0
	for _, t := range l.traces {
		n += len(t.Events)
	}
	return n
}

// ActivitySet returns the distinct activity names. Order is unspecified.
func (l *EventLog) ActivitySet() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range l.traces {
		for _, e := range t.Events {
			if !seen[e.Activity] {
				seen[e.Activity] = true
				out = append(out, e.Activity)
			}
		}
	}
	return out
}

// ResourceSet returns the distinct non-empty resources. Order is unspecified.
func (l *EventLog) ResourceSet() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range l.traces {
		for _, e := range t.Events {
			if e.Resource != "" && !seen[e.Resource] {
				seen[e.Resource] = true
				out = append(out, e.Resource)
			}
		}
	}
	return out
}

// Variant is one distinct activity sequence across the log.
type Variant struct {
	Key        string   `json:"variant"`
	Count      int      `json:"count"`
	CaseIDs    []string `json:"caseIds"`
	Percentage float64  `json:"percentage"`
}

// Variants groups traces by variant key, sorted by count descending with
// lexicographic key as tie break.
func (l *EventLog) Variants() []Variant {
	groups := make(map[string][]string)
	for _, id := range l.order {
		key := l.traces[id].VariantKey()
		groups[key] = append(groups[key], id)
	}

	total := len(l.order)
	out := make([]Variant, 0, len(groups))
	for key, cases := range groups {
		out = append(out, Variant{
			Key:        key,
			Count:      len(cases),
			CaseIDs:    cases,
			Percentage: stats.Round2(float64(len(cases)) / float64(total) * 100),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// DirectlyFollows counts consecutive activity pairs within traces.
// No pairs cross trace boundaries.
func (l *EventLog) DirectlyFollows() map[string]map[string]int {
	dfg := make(map[string]map[string]int)
	for _, id := range l.order {
		events := l.traces[id].Events
		for i := 0; i+1 < len(events); i++ {
			src, dst := events[i].Activity, events[i+1].Activity
			if dfg[src] == nil {
				dfg[src] = make(map[string]int)
			}
			dfg[src][dst]++
		}
	}
	return dfg
}

// ActivityCount is an activity with an occurrence count.
type ActivityCount struct {
	Activity string `json:"activity"`
	Count    int    `json:"count"`
}

// StartActivities counts first-event activities per trace, sorted by count
// descending.
func (l *EventLog) StartActivities() []ActivityCount {
	return l.boundaryActivities(func(t *Trace) string {
		return t.Events[0].Activity
	})
}

// EndActivities counts last-event activities per trace, sorted by count
// descending.
func (l *EventLog) EndActivities() []ActivityCount {
	return l.boundaryActivities(func(t *Trace) string {
		return t.Events[len(t.Events)-1].Activity
	})
}

func (l *EventLog) boundaryActivities(pick func(*Trace) string) []ActivityCount {
	counts := make(map[string]int)
	for _, id := range l.order {
		t := l.traces[id]
		if len(t.Events) == 0 {
			continue
		}
		counts[pick(t)]++
	}
	out := make([]ActivityCount, 0, len(counts))
	for a, c := range counts {
		out = append(out, ActivityCount{Activity: a, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}

// TimeRange is the observed span of the log.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimeRange returns the earliest and latest event timestamps. Zero values
// when the log has no events.
func (l *EventLog) TimeRange() TimeRange {
	var r TimeRange
	for _, t := range l.traces {
		if len(t.Events) == 0 {
			continue
		}
		if r.Start.IsZero() || t.Start().Before(r.Start) {
			r.Start = t.Start()
		}
		if r.End.IsZero() || t.End().After(r.End) {
			r.End = t.End()
		}
	}
	return r
}

// FilterByCases returns a new log containing the intersection of caseIDs and
// the log's cases, in the log's insertion order.
func (l *EventLog) FilterByCases(caseIDs []string) *EventLog {
	want := make(map[string]bool, len(caseIDs))
	for _, id := range caseIDs {
		want[id] = true
	}
	return l.filter(func(t *Trace) bool { return want[t.CaseID] })
}

// FilterByActivities returns a new log keeping only traces that contain at
// least one of the given activities.
func (l *EventLog) FilterByActivities(activities []string) *EventLog {
	want := make(map[string]bool, len(activities))
	for _, a := range activities {
		want[a] = true
	}
	return l.filter(func(t *Trace) bool {
		for _, e := range t.Events {
			if want[e.Activity] {
				return true
			}
		}
		return false
	})
}

// FilterByTimeRange keeps traces overlapping [start, end]. Fails when
// start is after end.
func (l *EventLog) FilterByTimeRange(start, end time.Time) (*EventLog, error) {
	if start.After(end) {
		return nil, errors.New(errors.CodeInvalidRange, "time range start is after end")
	}
	return l.filter(func(t *Trace) bool {
		if len(t.Events) == 0 {
			return false
		}
		return !t.Start().After(end) && !t.End().Before(start)
	}), nil
}

// FilterByAttribute keeps traces whose case attribute key equals value
// (compared on the wire form).
func (l *EventLog) FilterByAttribute(key, value string) *EventLog {
	return l.filter(func(t *Trace) bool {
		v, ok := t.Attributes.Get(key)
		return ok && v.String() == value
	})
}

func (l *EventLog) filter(keep func(*Trace) bool) *EventLog {
	out := New(l.Name, l.logger)
	out.Attributes = l.Attributes.Clone()
	for _, id := range l.order {
		t := l.traces[id]
		if keep(t) {
			out.order = append(out.order, id)
			out.traces[id] = t.Clone()
		}
	}
	return out
}

// Clone returns a deep, independent copy of the log.
func (l *EventLog) Clone() *EventLog {
	return l.filter(func(*Trace) bool { return true })
}
