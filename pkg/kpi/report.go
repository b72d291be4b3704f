// Package kpi aggregates cross-cutting process KPIs into a single report,
// composing variant, performance and social analysis outputs when provided.
package kpi

import (
	"github.com/procflow/procflow/pkg/performance"
	"github.com/procflow/procflow/pkg/stats"
)

// TimeKPIs cover durations and flow speed.
type TimeKPIs struct {
	CycleTime         stats.Stats               `json:"cycleTime"`
	CycleTimeCI       *stats.ConfidenceInterval `json:"cycleTimeCI"`
	TouchTime         stats.Stats               `json:"touchTime"`
	ActivitiesPerCase float64                   `json:"activitiesPerCase"`
	TopBottleneck     *performance.Bottleneck   `json:"topBottleneck,omitempty"`
}

// QualityKPIs cover rework and variant discipline.
type QualityKPIs struct {
	ReworkRate          float64 `json:"reworkRate"`
	FirstTimeRightRate  float64 `json:"firstTimeRightRate"`
	HappyPathRate       float64 `json:"happyPathRate"`
	VariantCount        int     `json:"variantCount"`
	StraightThroughRate float64 `json:"straightThroughRate"`
	SelfLoopRate        float64 `json:"selfLoopRate"`
}

// VolumeKPIs cover log size and concurrency.
type VolumeKPIs struct {
	CaseCount         int                     `json:"caseCount"`
	EventCount        int                     `json:"eventCount"`
	ActivityTypes     int                     `json:"activityTypes"`
	AvgWorkInProgress float64                 `json:"avgWorkInProgress"`
	Throughput        *performance.Throughput `json:"throughput,omitempty"`
}

// ConformanceResult is injected by an external conformance checker.
type ConformanceResult struct {
	Fitness              float64 `json:"fitness"`
	Precision            float64 `json:"precision"`
	ConformanceRate      float64 `json:"conformanceRate"`
	AvgDeviationsPerCase float64 `json:"avgDeviationsPerCase"`
}

// ResourceKPIs cover organizational load.
type ResourceKPIs struct {
	ResourceCount       int      `json:"resourceCount"`
	AvgHandoversPerCase float64  `json:"avgHandoversPerCase"`
	AutomationRate      float64  `json:"automationRate"`
	SoDViolations       *int     `json:"sodViolations,omitempty"`
	WorkloadBalance     *float64 `json:"workloadBalance,omitempty"`
}

// ProcessKPI is one evaluated process-specific KPI.
type ProcessKPI struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"` // transition or ratio
	From          string  `json:"from,omitempty"`
	To            string  `json:"to,omitempty"`
	Numerator     string  `json:"numerator,omitempty"`
	Denominator   string  `json:"denominator,omitempty"`
	Target        float64 `json:"target"`
	Unit          string  `json:"unit,omitempty"`
	Value         float64 `json:"value"`
	MedianMs      int64   `json:"medianMs,omitempty"`
	TargetMs      int64   `json:"targetMs,omitempty"`
	CaseCount     int     `json:"caseCount,omitempty"`
	CompliancePct float64 `json:"compliancePct"`
}

// Report is the aggregate KPI view of one event log.
type Report struct {
	Time        TimeKPIs           `json:"time"`
	Quality     QualityKPIs        `json:"quality"`
	Volume      VolumeKPIs         `json:"volume"`
	Conformance *ConformanceResult `json:"conformance"`
	Resource    ResourceKPIs       `json:"resource"`
	Process     []ProcessKPI       `json:"process,omitempty"`
	CaseCount   int                `json:"caseCount"`
	EventCount  int                `json:"eventCount"`
}

// Summary returns a compact description of the report.
func (r *Report) Summary() map[string]interface{} {
	return map[string]interface{}{
		"cases":          r.CaseCount,
		"events":         r.EventCount,
		"medianCycleMs":  r.Time.CycleTime.Median,
		"reworkRate":     r.Quality.ReworkRate,
		"variants":       r.Quality.VariantCount,
		"automationRate": r.Resource.AutomationRate,
		"processKPIs":    len(r.Process),
	}
}
