// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/procflow/procflow/pkg/discovery"
	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/performance"
	"github.com/procflow/procflow/pkg/social"
	"github.com/procflow/procflow/pkg/variants"
)

// Config holds all ProcFlow configuration.
type Config struct {
	Version int `yaml:"version"`

	Process     ProcessConfig       `yaml:"process"`
	Input       InputConfig         `yaml:"input"`
	Discovery   discovery.Config    `yaml:"discovery"`
	Variants    variants.Options    `yaml:"variants"`
	Performance performance.Options `yaml:"performance"`
	Social      social.Options      `yaml:"social"`
	Logging     LoggingConfig       `yaml:"logging"`
}

// ProcessConfig selects the SAP process context.
type ProcessConfig struct {
	ID       string `yaml:"id"`        // o2c | p2p | r2r | a2r | h2r | p2m | m2s
	S4System bool   `yaml:"s4_system"` // adapt table config for S/4HANA
}

// InputConfig controls event-log ingestion defaults.
type InputConfig struct {
	Format          string `yaml:"format"` // xes | csv | json, empty = by extension
	CaseIDColumn    string `yaml:"case_id_column"`
	ActivityColumn  string `yaml:"activity_column"`
	TimestampColumn string `yaml:"timestamp_column"`
	ResourceColumn  string `yaml:"resource_column"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version:     1,
		Discovery:   discovery.DefaultConfig(),
		Variants:    variants.DefaultOptions(),
		Performance: performance.DefaultOptions(),
		Social:      social.DefaultOptions(),
		Input: InputConfig{
			CaseIDColumn:    "case_id",
			ActivityColumn:  "activity",
			TimestampColumn: "timestamp",
			ResourceColumn:  "resource",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Discovery.DependencyThreshold < 0 || c.Discovery.DependencyThreshold > 1 {
		return errors.InvalidInput("dependency_threshold must be in [0, 1]")
	}
	if c.Discovery.AndThreshold < 0 || c.Discovery.AndThreshold > 1 {
		return errors.InvalidInput("and_threshold must be in [0, 1]")
	}
	if c.Discovery.MinFrequency < 0 {
		return errors.InvalidInput("min_frequency must be non-negative")
	}
	if c.Variants.ClusterThreshold < 0 || c.Variants.ClusterThreshold > 1 {
		return errors.InvalidInput("cluster_threshold must be in [0, 1]")
	}
	if c.Variants.MaxVariants < 0 {
		return errors.InvalidInput("max_variants must be non-negative")
	}
	if c.Performance.TrendThresholdPct < 0 {
		return errors.InvalidInput("trend_threshold_pct must be non-negative")
	}
	for label, target := range c.Performance.SLATargets {
		if target.Target <= 0 {
			return errors.InvalidInput(fmt.Sprintf("sla target %q must be positive", label))
		}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}
	return nil
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	paths := m.getConfigPaths()
	for _, path := range paths {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but fail on unreadable or malformed ones
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return m.config.Validate()
}

// LoadFile loads one explicit config file over the defaults.
func (m *Manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadFile(path); err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("load config %s", path))
	}
	m.paths = append(m.paths, path)
	return m.config.Validate()
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/procflow/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".procflow", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".procflow.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	// Merge non-zero values
	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	// Process
	if src.Process.ID != "" {
		m.config.Process.ID = src.Process.ID
	}
	if src.Process.S4System {
		m.config.Process.S4System = true
	}

	// Input
	if src.Input.Format != "" {
		m.config.Input.Format = src.Input.Format
	}
	if src.Input.CaseIDColumn != "" {
		m.config.Input.CaseIDColumn = src.Input.CaseIDColumn
	}
	if src.Input.ActivityColumn != "" {
		m.config.Input.ActivityColumn = src.Input.ActivityColumn
	}
	if src.Input.TimestampColumn != "" {
		m.config.Input.TimestampColumn = src.Input.TimestampColumn
	}
	if src.Input.ResourceColumn != "" {
		m.config.Input.ResourceColumn = src.Input.ResourceColumn
	}

	// Discovery
	if src.Discovery.DependencyThreshold != 0 {
		m.config.Discovery.DependencyThreshold = src.Discovery.DependencyThreshold
	}
	if src.Discovery.AndThreshold != 0 {
		m.config.Discovery.AndThreshold = src.Discovery.AndThreshold
	}
	if src.Discovery.LoopLengthOneThreshold != 0 {
		m.config.Discovery.LoopLengthOneThreshold = src.Discovery.LoopLengthOneThreshold
	}
	if src.Discovery.LoopLengthTwoThreshold != 0 {
		m.config.Discovery.LoopLengthTwoThreshold = src.Discovery.LoopLengthTwoThreshold
	}
	if src.Discovery.RelativeToBestThreshold != 0 {
		m.config.Discovery.RelativeToBestThreshold = src.Discovery.RelativeToBestThreshold
	}
	if src.Discovery.MinFrequency != 0 {
		m.config.Discovery.MinFrequency = src.Discovery.MinFrequency
	}

	// Variants
	if src.Variants.ClusterThreshold != 0 {
		m.config.Variants.ClusterThreshold = src.Variants.ClusterThreshold
	}
	if src.Variants.MaxVariants != 0 {
		m.config.Variants.MaxVariants = src.Variants.MaxVariants
	}
	if src.Variants.RootCauseVariants != 0 {
		m.config.Variants.RootCauseVariants = src.Variants.RootCauseVariants
	}

	// Performance
	if len(src.Performance.SLATargets) > 0 {
		if m.config.Performance.SLATargets == nil {
			m.config.Performance.SLATargets = make(map[string]performance.SLATarget, len(src.Performance.SLATargets))
		}
		for label, target := range src.Performance.SLATargets {
			m.config.Performance.SLATargets[label] = target
		}
	}
	if src.Performance.TrendThresholdPct != 0 {
		m.config.Performance.TrendThresholdPct = src.Performance.TrendThresholdPct
	}
	if src.Performance.TopBottlenecks != 0 {
		m.config.Performance.TopBottlenecks = src.Performance.TopBottlenecks
	}

	// Social
	if len(src.Social.SoDRules) > 0 {
		m.config.Social.SoDRules = src.Social.SoDRules
	}
	if src.Social.TopHandovers != 0 {
		m.config.Social.TopHandovers = src.Social.TopHandovers
	}

	// Logging
	if src.Logging.Level != "" {
		m.config.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		m.config.Logging.Format = src.Logging.Format
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("PROCFLOW_PROCESS"); v != "" {
		m.config.Process.ID = v
	}
	if v := os.Getenv("PROCFLOW_LOG_LEVEL"); v != "" {
		m.config.Logging.Level = v
	}
	if v := os.Getenv("PROCFLOW_LOG_FORMAT"); v != "" {
		m.config.Logging.Format = v
	}
	if v := os.Getenv("PROCFLOW_DEPENDENCY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			m.config.Discovery.DependencyThreshold = f
		}
	}
	if v := os.Getenv("PROCFLOW_MAX_VARIANTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m.config.Variants.MaxVariants = n
		}
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".procflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalLoadErr error
	globalOnce    sync.Once
)

// Global returns the global configuration manager. A failed initial load is
// reported by GlobalLoadError.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalLoadErr = globalManager.Load()
	})
	return globalManager
}

// GlobalLoadError returns the error from the initial Global load, if any.
func GlobalLoadError() error {
	Global()
	return globalLoadErr
}
