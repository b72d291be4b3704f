package eventlog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/interfaces"
)

// MarshalJSON emits the attributes as a JSON object in insertion order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, attr := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(attr.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(attr.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object token-by-token so key order survives.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes must be a JSON object")
	}

	*a = (*a)[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		*a = append(*a, Attribute{Key: key, Value: jsonValue(raw)})
	}
	_, err = dec.Token() // closing brace
	return err
}

// jsonValue tags a decoded JSON value. Numbers become ints only when truly
// integral.
func jsonValue(raw interface{}) Value {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return IntValue(i)
		}
		if f, err := v.Float64(); err == nil {
			return FloatValue(f)
		}
		return StringValue(v.String())
	case bool:
		return BoolValue(v)
	case string:
		return StringValue(v)
	case nil:
		return StringValue("")
	default:
		return StringValue(fmt.Sprintf("%v", v))
	}
}

type jsonEvent struct {
	Activity   string     `json:"activity"`
	Timestamp  string     `json:"timestamp"`
	Lifecycle  string     `json:"lifecycle"`
	Resource   string     `json:"resource,omitempty"`
	Attributes Attributes `json:"attributes,omitempty"`
	SourceRef  *SourceRef `json:"sourceRef,omitempty"`
}

type jsonTrace struct {
	CaseID     string      `json:"caseId"`
	Attributes Attributes  `json:"attributes,omitempty"`
	Events     []jsonEvent `json:"events"`
}

type jsonLog struct {
	Name        string      `json:"name"`
	Attributes  Attributes  `json:"attributes"`
	Classifiers Classifiers `json:"classifiers"`
	Extensions  []string    `json:"extensions"`
	Traces      []jsonTrace `json:"traces"`
}

// ToJSON serializes the log to the canonical JSON schema.
func (l *EventLog) ToJSON() ([]byte, error) {
	doc := jsonLog{
		Name:        l.Name,
		Attributes:  l.Attributes,
		Classifiers: l.Classifiers(),
		Extensions:  StandardExtensions,
		Traces:      make([]jsonTrace, 0, l.CaseCount()),
	}
	if doc.Attributes == nil {
		doc.Attributes = Attributes{}
	}

	for _, t := range l.Traces() {
		jt := jsonTrace{
			CaseID:     t.CaseID,
			Attributes: t.Attributes,
			Events:     make([]jsonEvent, 0, len(t.Events)),
		}
		for _, e := range t.Events {
			lifecycle := e.Lifecycle
			if lifecycle == "" {
				lifecycle = DefaultLifecycle
			}
			jt.Events = append(jt.Events, jsonEvent{
				Activity:   e.Activity,
				Timestamp:  e.Timestamp.UTC().Format(isoMillisZ),
				Lifecycle:  lifecycle,
				Resource:   e.Resource,
				Attributes: e.Attributes,
				SourceRef:  e.SourceRef,
			})
		}
		doc.Traces = append(doc.Traces, jt)
	}

	return json.MarshalIndent(doc, "", "  ")
}

// FromJSON is the exact inverse of ToJSON.
func FromJSON(data []byte, logger interfaces.Logger) (*EventLog, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New(errors.CodeInvalidFormat, "event log JSON must be an object")
	}

	var doc jsonLog
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "event log JSON decode failed")
	}

	log := New(doc.Name, logger)
	log.Attributes = doc.Attributes

	for _, jt := range doc.Traces {
		if jt.CaseID == "" {
			return nil, errors.InvalidInput("trace caseId must be non-empty")
		}
		trace := &Trace{CaseID: jt.CaseID, Attributes: jt.Attributes}
		for _, je := range jt.Events {
			if je.Activity == "" {
				return nil, errors.InvalidInput("event activity must be non-empty")
			}
			ts, err := ParseTimestamp(je.Timestamp)
			if err != nil {
				return nil, err
			}
			lifecycle := je.Lifecycle
			if lifecycle == "" {
				lifecycle = DefaultLifecycle
			}
			trace.Append(&Event{
				Activity:   je.Activity,
				Timestamp:  ts,
				Resource:   je.Resource,
				Lifecycle:  lifecycle,
				Attributes: je.Attributes,
				SourceRef:  je.SourceRef,
			})
		}
		if err := log.AddTrace(trace); err != nil {
			return nil, err
		}
	}
	return log, nil
}
