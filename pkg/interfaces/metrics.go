package interfaces

import "time"

// MetricsExporter exports metrics to a monitoring backend.
type MetricsExporter interface {
	// Counter increments a counter metric.
	Counter(name string, value int64, tags map[string]string)

	// Gauge sets a gauge metric to the specified value.
	Gauge(name string, value float64, tags map[string]string)

	// Timer records a duration.
	Timer(name string, duration time.Duration, tags map[string]string)

	// Close releases resources.
	Close() error
}

// Common metric names used throughout the system.
const (
	MetricImportRows      = "procflow.import.rows.total"
	MetricImportSkipped   = "procflow.import.rows.skipped"
	MetricImportDuration  = "procflow.import.duration"
	MetricAnalyzeCases    = "procflow.analyze.cases"
	MetricAnalyzeEvents   = "procflow.analyze.events"
	MetricAnalyzeDuration = "procflow.analyze.duration"
)

// Common tag names.
const (
	TagFormat   = "format"
	TagAnalyzer = "analyzer"
	TagProcess  = "process"
	TagStatus   = "status"
)
