package eventlog

import (
	"strings"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	log := buildOrderLog(t)
	log.Attributes.Set("system", StringValue("ECC 6.0"))
	trace := log.Trace("SO-1002")
	trace.Attributes.Set("region", StringValue("EMEA"))
	trace.Attributes.Set("netValue", FloatValue(9800.25))
	trace.Events[0].Attributes.Set("items", IntValue(3))
	trace.Events[0].SourceRef = &SourceRef{Table: "VBAK", Key: "1002", Field: "ERDAT"}

	data, err := log.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := FromJSON(data, testLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	if parsed.Name != log.Name {
		t.Errorf("Name = %q", parsed.Name)
	}
	if parsed.CaseCount() != 3 || parsed.EventCount() != 20 {
		t.Fatalf("cases=%d events=%d", parsed.CaseCount(), parsed.EventCount())
	}

	pt := parsed.Trace("SO-1002")
	if v, ok := pt.Attributes.Get("netValue"); !ok || v.Kind != KindFloat || v.Float != 9800.25 {
		t.Errorf("netValue = %+v, %v", v, ok)
	}
	if v, ok := pt.Events[0].Attributes.Get("items"); !ok || v.Kind != KindInt || v.Int != 3 {
		t.Errorf("items = %+v, %v (integral numbers must decode as ints)", v, ok)
	}
	if pt.Events[0].SourceRef == nil || pt.Events[0].SourceRef.Table != "VBAK" {
		t.Errorf("sourceRef = %+v", pt.Events[0].SourceRef)
	}
	if !pt.Events[0].Timestamp.Equal(ts("2025-01-15T08:30:00Z")) {
		t.Errorf("timestamp = %v", pt.Events[0].Timestamp)
	}
}

func TestJSONAttributeOrder(t *testing.T) {
	var attrs Attributes
	attrs.Set("zeta", StringValue("1"))
	attrs.Set("alpha", IntValue(2))
	attrs.Set("mid", BoolValue(true))

	data, err := attrs.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"zeta":"1","alpha":2,"mid":true}`
	if string(data) != want {
		t.Errorf("marshaled = %s, want %s", data, want)
	}

	var back Attributes
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if len(back) != 3 || back[0].Key != "zeta" || back[1].Key != "alpha" || back[2].Key != "mid" {
		t.Errorf("order after round trip: %+v", back)
	}
	if back[1].Value.Kind != KindInt || back[1].Value.Int != 2 {
		t.Errorf("alpha = %+v", back[1].Value)
	}
}

func TestFromJSONRejectsNonObject(t *testing.T) {
	for _, input := range []string{"", "[]", "42", `"log"`} {
		if _, err := FromJSON([]byte(input), testLogger(t)); err == nil {
			t.Errorf("FromJSON(%q) accepted non-object input", input)
		}
	}
}

func TestFromJSONValidation(t *testing.T) {
	missingActivity := `{"name":"x","traces":[{"caseId":"C1","events":[{"timestamp":"2025-01-01T00:00:00Z"}]}]}`
	if _, err := FromJSON([]byte(missingActivity), testLogger(t)); err == nil {
		t.Error("event without activity accepted")
	}

	missingCase := `{"name":"x","traces":[{"events":[]}]}`
	if _, err := FromJSON([]byte(missingCase), testLogger(t)); err == nil {
		t.Error("trace without caseId accepted")
	}

	badTimestamp := `{"name":"x","traces":[{"caseId":"C1","events":[{"activity":"A","timestamp":"nope"}]}]}`
	if _, err := FromJSON([]byte(badTimestamp), testLogger(t)); err == nil {
		t.Error("unparseable timestamp accepted")
	}
}

func TestToJSONContainsSchema(t *testing.T) {
	log := buildOrderLog(t)
	data, err := log.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	for _, frag := range []string{`"classifiers"`, `"extensions"`, `"concept"`, `"caseId": "SO-1001"`} {
		if !strings.Contains(string(data), frag) {
			t.Errorf("JSON output missing %s", frag)
		}
	}
}
