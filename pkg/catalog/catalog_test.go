package catalog

import (
	"testing"

	"github.com/procflow/procflow/pkg/errors"
)

func TestProcessIDs(t *testing.T) {
	ids := ProcessIDs()
	if len(ids) != 7 {
		t.Fatalf("got %d process ids", len(ids))
	}
	if ids[0] != "O2C" || ids[1] != "P2P" {
		t.Errorf("order = %v", ids)
	}
	for _, id := range ids {
		if _, err := GetConfig(id); err != nil {
			t.Errorf("GetConfig(%s): %v", id, err)
		}
	}
}

func TestGetConfig(t *testing.T) {
	cfg, err := GetConfig("  o2c ")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ID != "O2C" || cfg.Name != "Order to Cash" {
		t.Errorf("cfg = %s / %s", cfg.ID, cfg.Name)
	}
	if cfg.CaseID.Primary.Table != "VBAK" || cfg.CaseID.Primary.Field != "VBELN" {
		t.Errorf("primary case id = %+v", cfg.CaseID.Primary)
	}

	if _, err := GetConfig("XYZ"); err == nil {
		t.Error("unknown process accepted")
	}
}

func TestAdaptConfigForS4(t *testing.T) {
	cfg, err := GetConfig("O2C")
	if err != nil {
		t.Fatal(err)
	}
	before := len(cfg.Tables)

	adapted := AdaptConfigForS4(cfg)

	if !adapted.S4Adapted {
		t.Error("S4Adapted not set")
	}
	if _, ok := adapted.Tables["VBUK"]; ok {
		t.Error("VBUK survived adaptation")
	}
	if _, ok := adapted.Tables["VBUP"]; ok {
		t.Error("VBUP survived adaptation")
	}
	vbak := adapted.Tables["VBAK"]
	if !containsString(vbak.Fields, "GBSTK") {
		t.Errorf("GBSTK not migrated into VBAK: %v", vbak.Fields)
	}
	vbap := adapted.Tables["VBAP"]
	if !containsString(vbap.Fields, "GBSTA") {
		t.Errorf("GBSTA not migrated into VBAP: %v", vbap.Fields)
	}

	// The registry config must stay untouched.
	if cfg.S4Adapted {
		t.Error("input config mutated: S4Adapted")
	}
	if len(cfg.Tables) != before {
		t.Error("input config mutated: table count")
	}
	if _, ok := cfg.Tables["VBUK"]; !ok {
		t.Error("input config mutated: VBUK removed")
	}
	if containsString(cfg.Tables["VBAK"].Fields, "GBSTK") {
		t.Error("input config mutated: VBAK fields")
	}
}

func TestAdaptConfigForS4Rename(t *testing.T) {
	cfg, err := GetConfig("R2R")
	if err != nil {
		t.Fatal(err)
	}
	adapted := AdaptConfigForS4(cfg)

	if _, ok := adapted.Tables["BSEG"]; ok {
		t.Error("BSEG survived adaptation")
	}
	acdoca, ok := adapted.Tables["ACDOCA"]
	if !ok {
		t.Fatal("BSEG not renamed to ACDOCA")
	}
	if acdoca.ECCOnly {
		t.Error("renamed table still flagged ECC-only")
	}
	if !containsString(acdoca.Fields, "HKONT") {
		t.Errorf("ACDOCA fields = %v", acdoca.Fields)
	}
	if _, ok := adapted.Tables["BSIS"]; ok {
		t.Error("BSIS survived adaptation")
	}
}

func TestIsS4System(t *testing.T) {
	tests := []struct {
		name string
		sys  SystemDescriptor
		want bool
	}{
		{"empty", SystemDescriptor{}, false},
		{"component", SystemDescriptor{Component: "SAP S/4HANA"}, true},
		{"s4core component", SystemDescriptor{Component: "S4CORE"}, true},
		{"release numeric", SystemDescriptor{Release: "1809"}, true},
		{"release boundary", SystemDescriptor{Release: "1709"}, true},
		{"release old", SystemDescriptor{Release: "617"}, false},
		{"release garbage", SystemDescriptor{Release: "7.50"}, false},
		{"product", SystemDescriptor{SAPProduct: "SAP S/4HANA Cloud"}, true},
		{"installed component", SystemDescriptor{Components: []ComponentInfo{{Code: "SAP_BASIS"}, {Code: "S4CORE"}}}, true},
		{"acdoca hint", SystemDescriptor{TableHints: map[string]bool{"ACDOCA": true}}, true},
		{"hint false", SystemDescriptor{TableHints: map[string]bool{"ACDOCA": false}}, false},
		{"ecc", SystemDescriptor{Component: "SAP ECC 6.0", Release: "617"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsS4System(tt.sys); got != tt.want {
				t.Errorf("IsS4System = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookupTcode(t *testing.T) {
	act, err := LookupTcode(" va01 ", "")
	if err != nil {
		t.Fatal(err)
	}
	if act.Activity != "Create Sales Order" || act.ProcessID != "O2C" {
		t.Errorf("got %+v", act)
	}

	act, err = LookupTcode("FB01", "R2R")
	if err != nil {
		t.Fatal(err)
	}
	if act.Activity != "Create Journal Entry" {
		t.Errorf("got %+v", act)
	}

	if _, err := LookupTcode("VA01", "R2R"); err == nil {
		t.Error("tcode found outside its process")
	}
	if _, err := LookupTcode("", ""); !errors.IsInvalidInput(err) {
		t.Errorf("empty tcode: %v", err)
	}
	if _, err := LookupTcode("ZZZZ", ""); err == nil {
		t.Error("unknown tcode accepted")
	}
	if _, err := LookupTcode("VA01", "NOPE"); err == nil {
		t.Error("unknown process accepted")
	}
}

func TestGetConfigReturnsIndependentCopy(t *testing.T) {
	first, err := GetConfig("P2P")
	if err != nil {
		t.Fatal(err)
	}
	first.Tables["ZCUST"] = TableConfig{Type: TableMaster}
	first.TcodeMap["Z999"] = "Custom Step"
	delete(first.KPIs, "po_to_gr")

	second, err := GetConfig("P2P")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := second.Tables["ZCUST"]; ok {
		t.Error("registry tables mutated through GetConfig result")
	}
	if _, ok := second.TcodeMap["Z999"]; ok {
		t.Error("registry tcode map mutated through GetConfig result")
	}
	if _, ok := second.KPIs["po_to_gr"]; !ok {
		t.Error("registry kpi map mutated through GetConfig result")
	}
}

func TestCloneIsolation(t *testing.T) {
	cfg, err := GetConfig("O2C")
	if err != nil {
		t.Fatal(err)
	}
	clone := cfg.Clone()
	clone.Tables["ZZZZ"] = TableConfig{Type: TableMaster}
	clone.TcodeMap["Z001"] = "Custom"
	clone.ReferenceActivities[0] = "changed"
	clone.KPIs["extra"] = KPISpec{Type: "ratio"}

	if _, ok := cfg.Tables["ZZZZ"]; ok {
		t.Error("table map shared")
	}
	if _, ok := cfg.TcodeMap["Z001"]; ok {
		t.Error("tcode map shared")
	}
	if cfg.ReferenceActivities[0] != "Create Sales Order" {
		t.Error("reference activities shared")
	}
	if _, ok := cfg.KPIs["extra"]; ok {
		t.Error("kpi map shared")
	}
}
