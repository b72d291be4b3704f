// Package pkg provides the main entry point for the ProcFlow library.
//
// ProcFlow mines SAP process models, variants, performance figures and
// organizational networks from event logs.
//
// Basic usage:
//
//	engine := procflow.NewEngine()
//	model, err := engine.Discover(ctx, log)
//
//	// Full analysis with a process context
//	analysis, err := engine.Analyze(ctx, log)
//	report, err := engine.KPIReport(ctx, log, "o2c", false)
package pkg

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/procflow/procflow/pkg/catalog"
	"github.com/procflow/procflow/pkg/config"
	"github.com/procflow/procflow/pkg/defaults/logging"
	"github.com/procflow/procflow/pkg/defaults/metrics"
	"github.com/procflow/procflow/pkg/discovery"
	"github.com/procflow/procflow/pkg/errors"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/interfaces"
	"github.com/procflow/procflow/pkg/kpi"
	"github.com/procflow/procflow/pkg/performance"
	"github.com/procflow/procflow/pkg/social"
	"github.com/procflow/procflow/pkg/variants"
)

// Engine bundles the analyzers behind one configured entry point.
type Engine struct {
	cfg     *config.Config
	logger  interfaces.Logger
	metrics interfaces.MetricsExporter
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithConfig sets the analysis configuration.
func WithConfig(cfg *config.Config) EngineOption {
	return func(e *Engine) { e.cfg = cfg }
}

// WithLogger sets the structured logger.
func WithLogger(l interfaces.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithMetricsExporter sets the metrics exporter.
func WithMetricsExporter(m interfaces.MetricsExporter) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a ProcFlow engine. Defaults: stock configuration, no
// logging, no metrics.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:     config.Default(),
		logger:  logging.Noop(),
		metrics: metrics.NewNoopMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Discover mines a process model from the log.
func (e *Engine) Discover(ctx context.Context, log *eventlog.EventLog) (*discovery.ProcessModel, error) {
	started := time.Now()
	model, err := discovery.NewMiner(e.cfg.Discovery).Mine(ctx, log)
	if err != nil {
		return nil, err
	}
	e.observe("discovery", started, log)
	e.logger.Info("model discovered", map[string]interface{}{
		"activities": len(model.Activities),
		"edges":      len(model.Edges),
	})
	return model, nil
}

// Analysis bundles the three analyzer outputs.
type Analysis struct {
	Variants    *variants.Result    `json:"variants"`
	Performance *performance.Result `json:"performance"`
	Social      *social.Result      `json:"social"`
}

// Analyze runs the variant, performance and social analyzers concurrently.
func (e *Engine) Analyze(ctx context.Context, log *eventlog.EventLog) (*Analysis, error) {
	started := time.Now()
	result := &Analysis{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := variants.New(e.cfg.Variants).Analyze(gctx, log)
		if err != nil {
			return err
		}
		result.Variants = r
		return nil
	})
	g.Go(func() error {
		r, err := performance.New(e.cfg.Performance).Analyze(gctx, log)
		if err != nil {
			return err
		}
		result.Performance = r
		return nil
	})
	g.Go(func() error {
		r, err := social.New(e.cfg.Social).Analyze(gctx, log)
		if err != nil {
			return err
		}
		result.Social = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.observe("analyze", started, log)
	e.logger.Info("analysis complete", map[string]interface{}{
		"variants":   result.Variants.TotalVariantCount,
		"reworkRate": result.Variants.Rework.ReworkRate,
	})
	return result, nil
}

// KPIReport runs the full analysis and aggregates it into a KPI report.
// processID may be empty; s4 adapts the process configuration for S/4HANA.
func (e *Engine) KPIReport(ctx context.Context, log *eventlog.EventLog, processID string, s4 bool) (*kpi.Report, error) {
	var processCfg *catalog.ProcessConfig
	if processID != "" {
		cfg, err := catalog.GetConfig(processID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeProcessNotFound,
				"valid processes: "+strings.Join(catalog.ProcessIDs(), ", "))
		}
		if s4 {
			cfg = catalog.AdaptConfigForS4(cfg)
		}
		processCfg = cfg
	}

	analysis, err := e.Analyze(ctx, log)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report, err := kpi.NewEngine().Analyze(ctx, log, kpi.Inputs{
		Variants:      analysis.Variants,
		Performance:   analysis.Performance,
		Social:        analysis.Social,
		ProcessConfig: processCfg,
	})
	if err != nil {
		return nil, err
	}
	e.observe("kpi", started, log)
	return report, nil
}

// observe records per-run metrics for one analyzer stage.
func (e *Engine) observe(stage string, started time.Time, log *eventlog.EventLog) {
	tags := map[string]string{interfaces.TagAnalyzer: stage}
	e.metrics.Timer(interfaces.MetricAnalyzeDuration, time.Since(started), tags)
	e.metrics.Gauge(interfaces.MetricAnalyzeCases, float64(log.CaseCount()), tags)
	e.metrics.Gauge(interfaces.MetricAnalyzeEvents, float64(log.EventCount()), tags)
}
