// Package eventlog defines the process mining event log model: Event, Trace
// and EventLog, together with the XES, JSON and CSV codecs.
package eventlog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/procflow/procflow/pkg/errors"
)

// Standard XES attribute keys.
const (
	KeyConceptName   = "concept:name"
	KeyTimestamp     = "time:timestamp"
	KeyResource      = "org:resource"
	KeyLifecycle     = "lifecycle:transition"
	DefaultLifecycle = "complete"
)

// Kind tags the semantic type of an attribute value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTimestamp
)

// Value is a tagged attribute value. Exactly one payload field is
// meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
}

// StringValue builds a string-kind value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue builds an int-kind value.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue builds a float-kind value.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// BoolValue builds a bool-kind value.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// TimeValue builds a timestamp-kind value.
func TimeValue(t time.Time) Value { return Value{Kind: KindTimestamp, Time: t.UTC()} }

// String renders the value as text, matching the CSV/XES wire form.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindTimestamp:
		return v.Time.UTC().Format(isoMillisZ)
	default:
		return v.Str
	}
}

// MarshalJSON emits the native JSON form of the payload.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindTimestamp:
		return json.Marshal(v.Time.UTC().Format(isoMillisZ))
	default:
		return json.Marshal(v.Str)
	}
}

// Attribute is a single ordered key/value entry.
type Attribute struct {
	Key   string
	Value Value
}

// Attributes is an insertion-ordered attribute list. Order is load-bearing
// for deterministic CSV and XES output.
type Attributes []Attribute

// Get returns the value for key and whether it exists.
func (a Attributes) Get(key string) (Value, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value for key, or appends when absent.
func (a *Attributes) Set(key string, v Value) {
	for i, attr := range *a {
		if attr.Key == key {
			(*a)[i].Value = v
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Value: v})
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if len(a) == 0 {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

// SourceRef links an event back to the SAP evidence record it was derived from.
type SourceRef struct {
	Table string `json:"table"`
	Key   string `json:"key"`
	Field string `json:"field"`
}

// Event is a single observation within a trace.
type Event struct {
	Activity   string
	Timestamp  time.Time
	Resource   string
	Lifecycle  string
	Attributes Attributes
	SourceRef  *SourceRef
}

// NewEvent constructs a validated event. The timestamp accepts a time.Time,
// an ISO-8601 string (Z or numeric offset), or integer/float epoch millis.
func NewEvent(activity string, timestamp interface{}) (*Event, error) {
	if activity == "" {
		return nil, errors.InvalidInput("event activity must be non-empty")
	}
	ts, err := ParseTimestamp(timestamp)
	if err != nil {
		return nil, err
	}
	return &Event{
		Activity:  activity,
		Timestamp: ts,
		Lifecycle: DefaultLifecycle,
	}, nil
}

// Clone returns a deep, independent copy of the event.
func (e *Event) Clone() *Event {
	out := *e
	out.Attributes = e.Attributes.Clone()
	if e.SourceRef != nil {
		ref := *e.SourceRef
		out.SourceRef = &ref
	}
	return &out
}

// Timestamp formats.
const isoMillisZ = "2006-01-02T15:04:05.000Z"

var timestampFormats = []string{
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05Z07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp normalizes the accepted timestamp representations to UTC.
func ParseTimestamp(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, errors.InvalidInput("event timestamp must be set")
		}
		return t.UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case int:
		return time.UnixMilli(int64(t)).UTC(), nil
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case string:
		if t == "" {
			return time.Time{}, errors.InvalidInput("event timestamp must be non-empty")
		}
		for _, format := range timestampFormats {
			if parsed, err := time.Parse(format, t); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, errors.InvalidTimestamp(t)
	case nil:
		return time.Time{}, errors.InvalidInput("event timestamp must be set")
	default:
		return time.Time{}, errors.InvalidInputf("unsupported timestamp type %T", v)
	}
}
