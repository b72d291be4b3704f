package variants

import (
	"sort"

	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/stats"
)

// findRootCauses correlates case attributes with variant membership using
// lift. Trace attributes and first-event attributes (prefixed "event:") are
// both considered.
func (a *Analyzer) findRootCauses(log *eventlog.EventLog, details []Detail) []RootCause {
	totalCases := log.CaseCount()
	if totalCases == 0 {
		return nil
	}

	// attrKey -> value -> case ids carrying that value
	attrCases := make(map[string]map[string]map[string]bool)
	record := func(key, value, caseID string) {
		if value == "" {
			return
		}
		if attrCases[key] == nil {
			attrCases[key] = make(map[string]map[string]bool)
		}
		if attrCases[key][value] == nil {
			attrCases[key][value] = make(map[string]bool)
		}
		attrCases[key][value][caseID] = true
	}

	for _, t := range log.Traces() {
		for _, attr := range t.Attributes {
			record(attr.Key, attr.Value.String(), t.CaseID)
		}
		if len(t.Events) > 0 {
			for _, attr := range t.Events[0].Attributes {
				record("event:"+attr.Key, attr.Value.String(), t.CaseID)
			}
		}
	}

	limit := len(details)
	if limit > a.opts.RootCauseVariants {
		limit = a.opts.RootCauseVariants
	}

	var causes []RootCause
	for i := 0; i < limit; i++ {
		v := details[i]
		inVariant := make(map[string]bool, len(v.CaseIDs))
		for _, id := range v.CaseIDs {
			inVariant[id] = true
		}
		pVariant := float64(v.Count) / float64(totalCases)

		for attrKey, values := range attrCases {
			for value, cases := range values {
				casesWithValue := len(cases)
				casesInBoth := 0
				for id := range cases {
					if inVariant[id] {
						casesInBoth++
					}
				}

				pConditional := float64(casesInBoth) / float64(casesWithValue)
				lift := pConditional / pVariant

				switch {
				case lift > 1.5 && casesInBoth >= 2:
					causes = append(causes, RootCause{
						Variant:        v.Key,
						Attribute:      attrKey,
						Value:          value,
						Lift:           stats.Round2(lift),
						CasesInBoth:    casesInBoth,
						CasesWithValue: casesWithValue,
						Direction:      "positive",
					})
				case lift > 0 && lift < 0.5 && casesWithValue >= 5:
					causes = append(causes, RootCause{
						Variant:        v.Key,
						Attribute:      attrKey,
						Value:          value,
						Lift:           stats.Round2(lift),
						CasesInBoth:    casesInBoth,
						CasesWithValue: casesWithValue,
						Direction:      "negative",
					})
				}
			}
		}
	}

	sort.Slice(causes, func(i, j int) bool {
		if causes[i].Lift != causes[j].Lift {
			return causes[i].Lift > causes[j].Lift
		}
		if causes[i].Attribute != causes[j].Attribute {
			return causes[i].Attribute < causes[j].Attribute
		}
		return causes[i].Value < causes[j].Value
	})
	return causes
}
