package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Version != 1 {
		t.Errorf("Version = %d", cfg.Version)
	}
	if cfg.Discovery.DependencyThreshold != 0.5 {
		t.Errorf("DependencyThreshold = %v", cfg.Discovery.DependencyThreshold)
	}
	if cfg.Variants.MaxVariants != 100 {
		t.Errorf("MaxVariants = %d", cfg.Variants.MaxVariants)
	}
	if cfg.Performance.TopBottlenecks != 10 {
		t.Errorf("TopBottlenecks = %d", cfg.Performance.TopBottlenecks)
	}
	if cfg.Input.CaseIDColumn != "case_id" || cfg.Input.ActivityColumn != "activity" {
		t.Errorf("input columns = %+v", cfg.Input)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"dependency threshold above one", func(c *Config) { c.Discovery.DependencyThreshold = 1.5 }},
		{"negative and threshold", func(c *Config) { c.Discovery.AndThreshold = -0.1 }},
		{"negative min frequency", func(c *Config) { c.Discovery.MinFrequency = -1 }},
		{"cluster threshold above one", func(c *Config) { c.Variants.ClusterThreshold = 2 }},
		{"negative max variants", func(c *Config) { c.Variants.MaxVariants = -5 }},
		{"negative trend threshold", func(c *Config) { c.Performance.TrendThresholdPct = -1 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
process:
  id: p2p
  s4_system: true
discovery:
  dependency_threshold: 0.7
variants:
  max_variants: 50
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	cfg := m.Get()
	if cfg.Process.ID != "p2p" || !cfg.Process.S4System {
		t.Errorf("process = %+v", cfg.Process)
	}
	if cfg.Discovery.DependencyThreshold != 0.7 {
		t.Errorf("DependencyThreshold = %v", cfg.Discovery.DependencyThreshold)
	}
	if cfg.Variants.MaxVariants != 50 {
		t.Errorf("MaxVariants = %d", cfg.Variants.MaxVariants)
	}
	// Untouched fields keep their defaults.
	if cfg.Discovery.AndThreshold != 0.1 {
		t.Errorf("AndThreshold = %v", cfg.Discovery.AndThreshold)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %s", cfg.Logging.Level)
	}
	if len(m.GetPaths()) != 1 {
		t.Errorf("paths = %v", m.GetPaths())
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: chatty\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.LoadFile(path); err == nil {
		t.Error("invalid log level accepted")
	}
}

func TestLoadFileMissing(t *testing.T) {
	m := NewManager()
	if err := m.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing explicit config accepted")
	}
}

func TestLoadSLATargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
performance:
  sla_targets:
    __case_duration__:
      target: 5
      unit: days
      severity: critical
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	target, ok := m.Get().Performance.SLATargets["__case_duration__"]
	if !ok {
		t.Fatal("sla target not loaded")
	}
	if target.Target != 5 || target.Unit != "days" || target.Severity != "critical" {
		t.Errorf("target = %+v", target)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROCFLOW_PROCESS", "r2r")
	t.Setenv("PROCFLOW_LOG_LEVEL", "warn")
	t.Setenv("PROCFLOW_DEPENDENCY_THRESHOLD", "0.8")
	t.Setenv("PROCFLOW_MAX_VARIANTS", "25")

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	cfg := m.Get()
	if cfg.Process.ID != "r2r" {
		t.Errorf("Process.ID = %s", cfg.Process.ID)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %s", cfg.Logging.Level)
	}
	if cfg.Discovery.DependencyThreshold != 0.8 {
		t.Errorf("DependencyThreshold = %v", cfg.Discovery.DependencyThreshold)
	}
	if cfg.Variants.MaxVariants != 25 {
		t.Errorf("MaxVariants = %d", cfg.Variants.MaxVariants)
	}
}

func TestGlobalSingleton(t *testing.T) {
	m1 := Global()
	m2 := Global()
	if m1 != m2 {
		t.Error("Global returned different managers")
	}
	if GlobalLoadError() != GlobalLoadError() {
		t.Error("GlobalLoadError not stable across calls")
	}
}

func TestEnvIgnoresUnparsable(t *testing.T) {
	t.Setenv("PROCFLOW_DEPENDENCY_THRESHOLD", "not-a-number")

	m := NewManager()
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if got := m.Get().Discovery.DependencyThreshold; got != 0.5 {
		t.Errorf("DependencyThreshold = %v", got)
	}
}
