package eventlog

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/interfaces"
)

// Fixed CSV columns, in header order. Attribute columns follow, sorted.
var csvFixedColumns = []string{"caseId", "activity", "timestamp", "resource", "lifecycle"}

// ToCSV serializes the log as CSV. Traces are emitted in insertion order,
// events chronologically. Attribute columns are the sorted union of event
// attribute keys.
func (l *EventLog) ToCSV() string {
	attrKeys := l.eventAttributeKeys()

	var sb strings.Builder
	header := append(append([]string{}, csvFixedColumns...), attrKeys...)
	writeCSVRecord(&sb, header)

	for _, t := range l.Traces() {
		for _, e := range t.Events {
			record := make([]string, 0, len(header))
			lifecycle := e.Lifecycle
			if lifecycle == "" {
				lifecycle = DefaultLifecycle
			}
			record = append(record,
				t.CaseID,
				e.Activity,
				e.Timestamp.UTC().Format(isoMillisZ),
				e.Resource,
				lifecycle,
			)
			for _, key := range attrKeys {
				if v, ok := e.Attributes.Get(key); ok {
					record = append(record, v.String())
				} else {
					record = append(record, "")
				}
			}
			writeCSVRecord(&sb, record)
		}
	}
	return sb.String()
}

func (l *EventLog) eventAttributeKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, t := range l.Traces() {
		for _, e := range t.Events {
			for _, attr := range e.Attributes {
				if !seen[attr.Key] {
					seen[attr.Key] = true
					keys = append(keys, attr.Key)
				}
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func writeCSVRecord(sb *strings.Builder, record []string) {
	for i, field := range record {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(escapeCSV(field))
	}
	sb.WriteByte('\n')
}

// escapeCSV quotes fields containing comma, quote, CR or LF; inner quotes
// are doubled.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
}

// FromCSV parses CSV into a new event log. The parser streams and honours
// quoted fields containing newlines. Required columns: caseId, activity,
// timestamp (case-insensitive). Rows missing a required value or carrying an
// unparseable timestamp are skipped with a warning; the import succeeds with
// the parseable subset.
func FromCSV(r io.Reader, logger interfaces.Logger) (*EventLog, error) {
	log := New("", logger)
	scanner := newCSVReader(r)

	header, err := scanner.readRecord()
	if err == io.EOF {
		return nil, errors.New(errors.CodeInvalidFormat, "empty CSV input")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "CSV read failed")
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"caseid", "activity", "timestamp"} {
		if _, ok := colIdx[required]; !ok {
			return nil, errors.MissingColumn(required, header)
		}
	}

	caseCol := colIdx["caseid"]
	activityCol := colIdx["activity"]
	timestampCol := colIdx["timestamp"]
	resourceCol, hasResource := colIdx["resource"]
	lifecycleCol, hasLifecycle := colIdx["lifecycle"]

	known := map[int]bool{caseCol: true, activityCol: true, timestampCol: true}
	if hasResource {
		known[resourceCol] = true
	}
	if hasLifecycle {
		known[lifecycleCol] = true
	}

	row := 1
	skipped := 0
	for {
		record, err := scanner.readRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidFormat, "CSV read failed")
		}
		row++

		field := func(i int) string {
			if i < len(record) {
				return record[i]
			}
			return ""
		}

		caseID := field(caseCol)
		activity := field(activityCol)
		tsRaw := field(timestampCol)
		if caseID == "" || activity == "" || tsRaw == "" {
			skipped++
			log.logger.Warn("skipping CSV row with missing required field",
				map[string]interface{}{"row": row})
			continue
		}

		ts, err := ParseTimestamp(tsRaw)
		if err != nil {
			skipped++
			log.logger.Warn("skipping CSV row with unparseable timestamp",
				map[string]interface{}{"row": row, "timestamp": tsRaw})
			continue
		}

		event := &Event{Activity: activity, Timestamp: ts, Lifecycle: DefaultLifecycle}
		if hasResource {
			event.Resource = field(resourceCol)
		}
		if hasLifecycle && field(lifecycleCol) != "" {
			event.Lifecycle = field(lifecycleCol)
		}
		for i, name := range header {
			if known[i] {
				continue
			}
			if v := field(i); v != "" {
				event.Attributes.Set(strings.TrimSpace(name), StringValue(v))
			}
		}

		log.AddEvent(caseID, event)
	}

	if skipped > 0 {
		log.logger.Warn("CSV import finished with skipped rows",
			map[string]interface{}{"skipped": skipped, "imported": log.EventCount()})
	}
	return log, nil
}

// csvReader is a streaming CSV record reader built as a byte-level state
// machine, so quoted fields may contain delimiters, doubled quotes and
// newlines.
type csvReader struct {
	r *bufio.Reader
}

func newCSVReader(r io.Reader) *csvReader {
	return &csvReader{r: bufio.NewReaderSize(r, 64*1024)}
}

type csvState uint8

const (
	csvFieldStart csvState = iota
	csvInField
	csvInQuotedField
	csvQuoteInQuotedField
)

// readRecord returns the next record, or io.EOF when the input is exhausted.
func (s *csvReader) readRecord() ([]string, error) {
	var fields []string
	var field strings.Builder
	state := csvFieldStart
	read := false

	for {
		b, err := s.r.ReadByte()
		if err == io.EOF {
			if !read {
				return nil, io.EOF
			}
			fields = append(fields, field.String())
			return fields, nil
		}
		if err != nil {
			return nil, err
		}
		read = true

		switch state {
		case csvFieldStart:
			switch b {
			case '"':
				state = csvInQuotedField
			case ',':
				fields = append(fields, "")
			case '\r':
				// wait for the LF
			case '\n':
				if len(fields) == 0 && field.Len() == 0 {
					// blank line, keep scanning
					read = false
					continue
				}
				fields = append(fields, "")
				return fields, nil
			default:
				field.WriteByte(b)
				state = csvInField
			}

		case csvInField:
			switch b {
			case ',':
				fields = append(fields, field.String())
				field.Reset()
				state = csvFieldStart
			case '\r':
				// wait for the LF
			case '\n':
				fields = append(fields, field.String())
				return fields, nil
			default:
				field.WriteByte(b)
			}

		case csvInQuotedField:
			if b == '"' {
				state = csvQuoteInQuotedField
			} else {
				field.WriteByte(b)
			}

		case csvQuoteInQuotedField:
			switch b {
			case '"':
				// doubled quote is a literal quote
				field.WriteByte('"')
				state = csvInQuotedField
			case ',':
				fields = append(fields, field.String())
				field.Reset()
				state = csvFieldStart
			case '\r':
				// wait for the LF
			case '\n':
				fields = append(fields, field.String())
				return fields, nil
			default:
				// stray byte after closing quote; keep it
				field.WriteByte(b)
				state = csvInField
			}
		}
	}
}
