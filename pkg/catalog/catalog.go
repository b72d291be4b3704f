// Package catalog holds the static SAP process-table configuration registry
// and the ECC to S/4HANA adaptation rules.
package catalog

import (
	"strconv"
	"strings"

	"github.com/procflow/procflow/pkg/errors"
)

// TableType classifies the role a table plays in a process. Closed set.
type TableType string

const (
	TableRecord      TableType = "record"
	TableTransaction TableType = "transaction"
	TableFlow        TableType = "flow"
	TableChange      TableType = "change"
	TableDetail      TableType = "detail"
	TableStatus      TableType = "status"
	TableMaster      TableType = "master"
)

// TableConfig describes one process table.
type TableConfig struct {
	Type        TableType `json:"type"`
	Fields      []string  `json:"fields"`
	Description string    `json:"description"`
	ECCOnly     bool      `json:"eccOnly,omitempty"`
}

// CaseIDRef names a table/field pair used for case correlation.
type CaseIDRef struct {
	Table string `json:"table"`
	Field string `json:"field"`
}

// CaseIDConfig holds the primary case identifier and its correlations.
type CaseIDConfig struct {
	Primary      CaseIDRef   `json:"primary"`
	Correlations []CaseIDRef `json:"correlations"`
}

// KPISpec describes one process KPI. Transition KPIs measure the interval
// between two activities; ratio KPIs relate two activity counts.
type KPISpec struct {
	Type        string  `json:"type"` // "transition" or "ratio"
	From        string  `json:"from,omitempty"`
	To          string  `json:"to,omitempty"`
	Numerator   string  `json:"numerator,omitempty"`
	Denominator string  `json:"denominator,omitempty"`
	Target      float64 `json:"target"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description,omitempty"`
}

// FieldMigration moves a field between tables during S/4 adaptation.
type FieldMigration struct {
	SourceTable string `json:"sourceTable"`
	SourceField string `json:"sourceField"`
	TargetTable string `json:"targetTable"`
	TargetField string `json:"targetField"`
}

// S4Config holds the S/4HANA simplification rules for a process.
// A table replacement with an empty target means the table no longer exists.
type S4Config struct {
	TableReplacements map[string]string `json:"tableReplacements"`
	FieldMigrations   []FieldMigration  `json:"fieldMigrations"`
}

// ProcessConfig is the full configuration of one SAP process family.
type ProcessConfig struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Description         string                 `json:"description"`
	CaseID              CaseIDConfig           `json:"caseId"`
	Tables              map[string]TableConfig `json:"tables"`
	TcodeMap            map[string]string      `json:"tcodeMap"`
	ReferenceActivities []string               `json:"referenceActivities"`
	KPIs                map[string]KPISpec     `json:"kpis"`
	S4HANA              S4Config               `json:"s4hana"`
	Enrichment          []string               `json:"enrichment,omitempty"`
	S4Adapted           bool                   `json:"_s4adapted,omitempty"`
}

// Clone returns a deep, independent copy of the config.
func (c *ProcessConfig) Clone() *ProcessConfig {
	out := *c
	out.Tables = make(map[string]TableConfig, len(c.Tables))
	for name, tbl := range c.Tables {
		t := tbl
		t.Fields = append([]string(nil), tbl.Fields...)
		out.Tables[name] = t
	}
	out.TcodeMap = make(map[string]string, len(c.TcodeMap))
	for k, v := range c.TcodeMap {
		out.TcodeMap[k] = v
	}
	out.ReferenceActivities = append([]string(nil), c.ReferenceActivities...)
	out.KPIs = make(map[string]KPISpec, len(c.KPIs))
	for k, v := range c.KPIs {
		out.KPIs[k] = v
	}
	out.S4HANA.TableReplacements = make(map[string]string, len(c.S4HANA.TableReplacements))
	for k, v := range c.S4HANA.TableReplacements {
		out.S4HANA.TableReplacements[k] = v
	}
	out.S4HANA.FieldMigrations = append([]FieldMigration(nil), c.S4HANA.FieldMigrations...)
	out.Enrichment = append([]string(nil), c.Enrichment...)
	out.CaseID.Correlations = append([]CaseIDRef(nil), c.CaseID.Correlations...)
	return &out
}

// processOrder fixes the declaration order for global scans.
var processOrder = []string{"O2C", "P2P", "R2R", "A2R", "H2R", "P2M", "M2S"}

// ProcessIDs returns the registered process ids in declaration order.
func ProcessIDs() []string {
	out := make([]string, len(processOrder))
	copy(out, processOrder)
	return out
}

// GetConfig returns the configuration for a process id. The result is a
// clone; callers may mutate it freely.
func GetConfig(id string) (*ProcessConfig, error) {
	cfg, ok := registry[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return nil, errors.ProcessNotFound(id)
	}
	return cfg.Clone(), nil
}

// AdaptConfigForS4 returns a new config with the S/4HANA simplifications
// applied. The input is never mutated.
func AdaptConfigForS4(cfg *ProcessConfig) *ProcessConfig {
	out := cfg.Clone()

	for name, tbl := range cfg.Tables {
		replacement, hasRule := cfg.S4HANA.TableReplacements[name]
		switch {
		case hasRule && replacement != "":
			t := out.Tables[name]
			t.ECCOnly = false
			delete(out.Tables, name)
			out.Tables[replacement] = t
		case tbl.ECCOnly, hasRule:
			delete(out.Tables, name)
		}
	}

	for _, mig := range cfg.S4HANA.FieldMigrations {
		target, ok := out.Tables[mig.TargetTable]
		if !ok {
			continue
		}
		if !containsString(target.Fields, mig.TargetField) {
			target.Fields = append(target.Fields, mig.TargetField)
			out.Tables[mig.TargetTable] = target
		}
	}

	out.S4Adapted = true
	return out
}

// SystemDescriptor carries what is known about a connected SAP system.
type SystemDescriptor struct {
	Component  string          `json:"component,omitempty"`
	Release    string          `json:"release,omitempty"`
	SAPProduct string          `json:"sapProduct,omitempty"`
	Components []ComponentInfo `json:"components,omitempty"`
	TableHints map[string]bool `json:"tableHints,omitempty"`
}

// ComponentInfo is one installed software component.
type ComponentInfo struct {
	Code string `json:"code"`
}

// IsS4System reports whether the descriptor identifies an S/4HANA system.
func IsS4System(sys SystemDescriptor) bool {
	if strings.Contains(sys.Component, "S/4") || strings.Contains(sys.Component, "S4CORE") {
		return true
	}
	if release, err := strconv.Atoi(strings.TrimSpace(sys.Release)); err == nil && release >= 1709 {
		return true
	}
	if strings.Contains(sys.SAPProduct, "S/4") {
		return true
	}
	for _, comp := range sys.Components {
		if strings.Contains(comp.Code, "S4CORE") {
			return true
		}
	}
	return sys.TableHints["ACDOCA"]
}

// TcodeActivity is a resolved transaction code.
type TcodeActivity struct {
	Tcode     string `json:"tcode"`
	Activity  string `json:"activity"`
	ProcessID string `json:"processId"`
}

// LookupTcode resolves a transaction code to its activity, case-insensitively
// and whitespace-trimmed. With a process id the search is restricted to that
// process; otherwise all processes are scanned in declaration order.
func LookupTcode(tcode, processID string) (*TcodeActivity, error) {
	needle := strings.ToUpper(strings.TrimSpace(tcode))
	if needle == "" {
		return nil, errors.InvalidInput("tcode must be non-empty")
	}

	ids := processOrder
	if processID != "" {
		cfg, err := GetConfig(processID)
		if err != nil {
			return nil, err
		}
		ids = []string{cfg.ID}
	}

	for _, id := range ids {
		cfg := registry[id]
		for code, activity := range cfg.TcodeMap {
			if strings.ToUpper(code) == needle {
				return &TcodeActivity{Tcode: code, Activity: activity, ProcessID: id}, nil
			}
		}
	}
	return nil, errors.New(errors.CodeNotFound, "unknown transaction code").
		WithContext("tcode", tcode)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
