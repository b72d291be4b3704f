package social

import (
	"sort"

	"github.com/procflow/procflow/pkg/eventlog"
)

// SoD statuses.
const (
	SoDViolation = "violation"
	SoDCompliant = "compliant"
)

// SoDRule names a set of conflicting activities that must not be performed
// by one resource within the same case.
type SoDRule struct {
	Name       string   `yaml:"name" json:"name"`
	Activities []string `yaml:"activities" json:"activities"`
}

// DefaultSoDRules is the standard SAP segregation-of-duty rule set, applied
// when the caller supplies none.
func DefaultSoDRules() []SoDRule {
	return []SoDRule{
		{Name: "PO Create/Approve", Activities: []string{"Create Purchase Order", "Approve Purchase Order"}},
		{Name: "PR Create/Approve", Activities: []string{"Create Purchase Requisition", "Approve Purchase Requisition"}},
		{Name: "Invoice Create/Payment Approve", Activities: []string{"Invoice Receipt", "Approve Payment"}},
		{Name: "Goods Receipt/Invoice Receipt", Activities: []string{"Goods Receipt", "Invoice Receipt"}},
		{Name: "JE Create/Approve", Activities: []string{"Create Journal Entry", "Approve Journal Entry"}},
		{Name: "Asset Create/Retire", Activities: []string{"Create Asset", "Asset Retirement"}},
	}
}

// CaseViolation is one case where a single resource performed conflicting
// activities.
type CaseViolation struct {
	CaseID    string   `json:"caseId"`
	Resources []string `json:"resources"`
}

// SoDRuleResult is the evaluation of one rule.
type SoDRuleResult struct {
	Rule           SoDRule         `json:"rule"`
	ViolationCount int             `json:"violationCount"`
	Status         string          `json:"status"`
	ViolatingCases []CaseViolation `json:"violatingCases,omitempty"`
}

// SoDReport collects the rule evaluations.
type SoDReport struct {
	Rules           []SoDRuleResult `json:"rules"`
	TotalViolations int             `json:"totalViolations"`
}

// checkSoD counts, per rule, the cases in which one resource performs two or
// more of the rule's activities.
func (a *Analyzer) checkSoD(log *eventlog.EventLog) SoDReport {
	rules := a.opts.SoDRules
	if len(rules) == 0 {
		rules = DefaultSoDRules()
	}

	report := SoDReport{}
	for _, rule := range rules {
		ruleActivities := make(map[string]bool, len(rule.Activities))
		for _, act := range rule.Activities {
			ruleActivities[act] = true
		}

		result := SoDRuleResult{Rule: rule, Status: SoDCompliant}
		for _, t := range log.Traces() {
			// resource -> distinct rule activities performed
			performed := make(map[string]map[string]bool)
			for _, e := range t.Events {
				if e.Resource == "" || !ruleActivities[e.Activity] {
					continue
				}
				if performed[e.Resource] == nil {
					performed[e.Resource] = make(map[string]bool)
				}
				performed[e.Resource][e.Activity] = true
			}

			var offenders []string
			for resource, acts := range performed {
				if len(acts) >= 2 {
					offenders = append(offenders, resource)
				}
			}
			if len(offenders) > 0 {
				sort.Strings(offenders)
				result.ViolationCount++
				result.ViolatingCases = append(result.ViolatingCases, CaseViolation{
					CaseID:    t.CaseID,
					Resources: offenders,
				})
			}
		}

		if result.ViolationCount > 0 {
			result.Status = SoDViolation
			report.TotalViolations += result.ViolationCount
		}
		report.Rules = append(report.Rules, result)
	}
	return report
}
