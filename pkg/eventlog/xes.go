package eventlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/interfaces"
)

// XES extension declarations, in canonical order.
var xesExtensions = []struct {
	Name   string
	Prefix string
	URI    string
}{
	{"Concept", "concept", "http://www.xes-standard.org/concept.xesext"},
	{"Time", "time", "http://www.xes-standard.org/time.xesext"},
	{"Lifecycle", "lifecycle", "http://www.xes-standard.org/lifecycle.xesext"},
	{"Organizational", "org", "http://www.xes-standard.org/org.xesext"},
}

const xesEpoch = "1970-01-01T00:00:00.000+00:00"

// ToXES serializes the log as an XES 2.0 document.
func (l *EventLog) ToXES() string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<log xes.version=\"2.0\" xes.features=\"\">\n")

	for _, ext := range xesExtensions {
		fmt.Fprintf(&sb, "  <extension name=%q prefix=%q uri=%q/>\n", ext.Name, ext.Prefix, ext.URI)
	}

	sb.WriteString("  <global scope=\"trace\">\n")
	sb.WriteString("    <string key=\"concept:name\" value=\"UNKNOWN\"/>\n")
	sb.WriteString("  </global>\n")
	sb.WriteString("  <global scope=\"event\">\n")
	sb.WriteString("    <string key=\"concept:name\" value=\"UNKNOWN\"/>\n")
	fmt.Fprintf(&sb, "    <date key=\"time:timestamp\" value=%q/>\n", xesEpoch)
	sb.WriteString("  </global>\n")

	sb.WriteString("  <classifier name=\"Activity\" keys=\"concept:name\"/>\n")
	sb.WriteString("  <classifier name=\"Resource\" keys=\"org:resource\"/>\n")

	if l.Name != "" {
		writeXESAttr(&sb, 1, KeyConceptName, StringValue(l.Name))
	}
	for _, attr := range l.Attributes {
		writeXESAttr(&sb, 1, attr.Key, attr.Value)
	}

	for _, t := range l.Traces() {
		sb.WriteString("  <trace>\n")
		writeXESAttr(&sb, 2, KeyConceptName, StringValue(t.CaseID))
		for _, attr := range t.Attributes {
			writeXESAttr(&sb, 2, attr.Key, attr.Value)
		}
		for _, e := range t.Events {
			sb.WriteString("    <event>\n")
			writeXESAttr(&sb, 3, KeyConceptName, StringValue(e.Activity))
			writeXESAttr(&sb, 3, KeyTimestamp, TimeValue(e.Timestamp))
			if e.Resource != "" {
				writeXESAttr(&sb, 3, KeyResource, StringValue(e.Resource))
			}
			lifecycle := e.Lifecycle
			if lifecycle == "" {
				lifecycle = DefaultLifecycle
			}
			writeXESAttr(&sb, 3, KeyLifecycle, StringValue(lifecycle))
			for _, attr := range e.Attributes {
				writeXESAttr(&sb, 3, attr.Key, attr.Value)
			}
			if e.SourceRef != nil {
				writeXESAttr(&sb, 3, "sap:table", StringValue(e.SourceRef.Table))
				writeXESAttr(&sb, 3, "sap:key", StringValue(e.SourceRef.Key))
				writeXESAttr(&sb, 3, "sap:field", StringValue(e.SourceRef.Field))
			}
			sb.WriteString("    </event>\n")
		}
		sb.WriteString("  </trace>\n")
	}

	sb.WriteString("</log>\n")
	return sb.String()
}

func writeXESAttr(sb *strings.Builder, depth int, key string, v Value) {
	indent := strings.Repeat("  ", depth)
	var element, value string
	switch v.Kind {
	case KindInt:
		element = "int"
		value = strconv.FormatInt(v.Int, 10)
	case KindFloat:
		// Integral floats still carry the float tag; only true ints emit <int>.
		element = "float"
		value = strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		element = "boolean"
		value = strconv.FormatBool(v.Bool)
	case KindTimestamp:
		element = "date"
		value = xesTimestamp(v.Time)
	default:
		element = "string"
		value = v.Str
	}
	fmt.Fprintf(sb, "%s<%s key=\"%s\" value=\"%s\"/>\n",
		indent, element, escapeXML(key), escapeXML(value))
}

// xesTimestamp renders the explicit +00:00 offset instead of a trailing Z.
func xesTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000") + "+00:00"
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func escapeXML(s string) string   { return xmlEscaper.Replace(s) }
func unescapeXML(s string) string { return xmlUnescaper.Replace(s) }

// --- Streaming XES import ---

type xesState uint8

const (
	xesInit xesState = iota
	xesLog
	xesTrace
	xesEvent
)

var (
	xmlTagLog     = []byte("log")
	xmlTagTrace   = []byte("trace")
	xmlTagEvent   = []byte("event")
	xmlTagString  = []byte("string")
	xmlTagDate    = []byte("date")
	xmlTagInt     = []byte("int")
	xmlTagFloat   = []byte("float")
	xmlTagBoolean = []byte("boolean")
	xmlTagGlobal  = []byte("global")
)

// FromXES parses an XES document into a new event log using a streaming
// tag-level state machine. Events missing activity or timestamp are skipped
// with a warning.
func FromXES(r io.Reader, logger interfaces.Logger) (*EventLog, error) {
	log := New("", logger)
	reader := bufio.NewReaderSize(r, 64*1024)

	state := xesInit
	sawLog := false
	inGlobal := false
	var trace *Trace
	var event *Event
	var eventValid bool
	skipped := 0

	flushEvent := func() {
		if event == nil {
			return
		}
		if event.Activity == "" || event.Timestamp.IsZero() {
			skipped++
			log.logger.Warn("skipping XES event without activity or timestamp", nil)
		} else if eventValid {
			trace.Append(event)
		}
		event = nil
	}

	for {
		chunk, err := reader.ReadBytes('>')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, errors.CodeInvalidFormat, "XES read failed")
		}
		line := bytes.TrimSpace(chunk)

		switch {
		case len(line) == 0:
			// blank between tags

		case isOpenTag(line, xmlTagLog):
			state = xesLog
			sawLog = true

		case isOpenTag(line, xmlTagGlobal):
			// Globals carry defaults, not data; their children are skipped.
			if !bytes.HasSuffix(line, []byte("/>")) {
				inGlobal = true
			}

		case isCloseTag(line, xmlTagGlobal):
			inGlobal = false

		case inGlobal:
			// inside a global block

		case isOpenTag(line, xmlTagTrace):
			state = xesTrace
			trace = &Trace{}

		case isCloseTag(line, xmlTagTrace):
			if trace != nil && trace.CaseID != "" {
				log.AddTrace(trace)
			}
			trace = nil
			state = xesLog

		case isOpenTag(line, xmlTagEvent):
			state = xesEvent
			event = &Event{Lifecycle: DefaultLifecycle}
			eventValid = trace != nil

		case isCloseTag(line, xmlTagEvent):
			flushEvent()
			state = xesTrace

		case state == xesTrace && isXESAttributeTag(line):
			key, value, kind := extractXESAttribute(line)
			if key == KeyConceptName {
				trace.CaseID = value
			} else if key != "" {
				trace.Attributes.Set(key, attrValue(value, kind))
			}

		case state == xesEvent && isXESAttributeTag(line):
			applyEventAttribute(event, line)

		case state == xesLog && isXESAttributeTag(line):
			key, value, kind := extractXESAttribute(line)
			if key == KeyConceptName {
				log.Name = value
			} else if key != "" {
				log.Attributes.Set(key, attrValue(value, kind))
			}
		}

		if err == io.EOF {
			break
		}
	}

	if !sawLog {
		return nil, errors.New(errors.CodeInvalidFormat, "not an XES document: no log element")
	}
	if skipped > 0 {
		log.logger.Warn("XES import skipped events", map[string]interface{}{"skipped": skipped})
	}
	return log, nil
}

func applyEventAttribute(event *Event, line []byte) {
	if event == nil {
		return
	}
	key, value, kind := extractXESAttribute(line)
	switch key {
	case KeyConceptName:
		event.Activity = value
	case KeyTimestamp:
		if ts, err := ParseTimestamp(value); err == nil {
			event.Timestamp = ts
		}
	case KeyResource:
		event.Resource = value
	case KeyLifecycle:
		event.Lifecycle = value
	case "sap:table", "sap:key", "sap:field":
		if event.SourceRef == nil {
			event.SourceRef = &SourceRef{}
		}
		switch key {
		case "sap:table":
			event.SourceRef.Table = value
		case "sap:key":
			event.SourceRef.Key = value
		case "sap:field":
			event.SourceRef.Field = value
		}
	case "":
		// malformed attribute, ignore
	default:
		event.Attributes.Set(key, attrValue(value, kind))
	}
}

// attrValue converts a wire value into a tagged Value by XES element kind.
func attrValue(value string, kind Kind) Value {
	switch kind {
	case KindInt:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return IntValue(i)
		}
	case KindFloat:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return FloatValue(f)
		}
	case KindBool:
		if b, err := strconv.ParseBool(value); err == nil {
			return BoolValue(b)
		}
	case KindTimestamp:
		if t, err := ParseTimestamp(value); err == nil {
			return TimeValue(t)
		}
	}
	return StringValue(value)
}

func isOpenTag(line, element []byte) bool {
	if len(line) < len(element)+2 || line[0] != '<' {
		return false
	}
	if !bytes.HasPrefix(line[1:], element) {
		return false
	}
	next := 1 + len(element)
	if next >= len(line) {
		return true
	}
	c := line[next]
	return c == '>' || c == ' ' || c == '\t'
}

func isCloseTag(line, element []byte) bool {
	if len(line) < len(element)+3 || line[0] != '<' {
		return false
	}
	if line[1] == '/' {
		return bytes.HasPrefix(line[2:], element)
	}
	return false
}

func isXESAttributeTag(line []byte) bool {
	if len(line) < 3 || line[0] != '<' {
		return false
	}
	rest := line[1:]
	return bytes.HasPrefix(rest, xmlTagString) ||
		bytes.HasPrefix(rest, xmlTagDate) ||
		bytes.HasPrefix(rest, xmlTagInt) ||
		bytes.HasPrefix(rest, xmlTagFloat) ||
		bytes.HasPrefix(rest, xmlTagBoolean)
}

// extractXESAttribute pulls key, value and the element's value kind.
func extractXESAttribute(line []byte) (key, value string, kind Kind) {
	key = unescapeXML(string(extractXMLAttr(line, "key=\"")))
	value = unescapeXML(string(extractXMLAttr(line, "value=\"")))

	rest := line[1:]
	switch {
	case bytes.HasPrefix(rest, xmlTagDate):
		kind = KindTimestamp
	case bytes.HasPrefix(rest, xmlTagInt):
		kind = KindInt
	case bytes.HasPrefix(rest, xmlTagFloat):
		kind = KindFloat
	case bytes.HasPrefix(rest, xmlTagBoolean):
		kind = KindBool
	default:
		kind = KindString
	}
	return key, value, kind
}

func extractXMLAttr(line []byte, prefix string) []byte {
	idx := bytes.Index(line, []byte(prefix))
	if idx < 0 {
		return nil
	}
	start := idx + len(prefix)
	end := bytes.IndexByte(line[start:], '"')
	if end < 0 {
		return nil
	}
	return line[start : start+end]
}
