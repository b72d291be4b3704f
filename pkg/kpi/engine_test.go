package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/procflow/procflow/pkg/catalog"
	"github.com/procflow/procflow/pkg/defaults/logging"
	"github.com/procflow/procflow/pkg/eventlog"
	"github.com/procflow/procflow/pkg/performance"
	"github.com/procflow/procflow/pkg/social"
	"github.com/procflow/procflow/pkg/variants"
)

const hourMs = int64(60 * 60 * 1000)

type kpiEvent struct {
	activity string
	resource string
	offset   time.Duration
}

// buildSalesLog builds four order cases. Three follow the plain sequence,
// one repeats the credit check and finishes through an RFC batch user.
func buildSalesLog(t *testing.T) *eventlog.EventLog {
	t.Helper()
	log := eventlog.New("kpi-test", logging.NewZapLogger(zaptest.NewLogger(t)))
	base := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		id     string
		events []kpiEvent
	}{
		{"K1", []kpiEvent{
			{"Create Sales Order", "USER_A", 0},
			{"Credit Check", "SYSTEM", time.Hour},
			{"Create Invoice", "USER_B", 2 * time.Hour},
			{"Receive Payment", "USER_B", 4 * time.Hour},
		}},
		{"K2", []kpiEvent{
			{"Create Sales Order", "USER_A", 0},
			{"Credit Check", "SYSTEM", 2 * time.Hour},
			{"Create Invoice", "USER_B", 4 * time.Hour},
			{"Receive Payment", "USER_B", 6 * time.Hour},
		}},
		{"K3", []kpiEvent{
			{"Create Sales Order", "USER_A", 0},
			{"Credit Check", "SYSTEM", time.Hour},
			{"Credit Check", "SYSTEM", 2 * time.Hour},
			{"Create Invoice", "USER_B", 3 * time.Hour},
			{"Receive Payment", "RFC_BATCH_01", 5 * time.Hour},
		}},
		{"K4", []kpiEvent{
			{"Create Sales Order", "USER_A", 0},
			{"Credit Check", "SYSTEM", time.Hour},
			{"Create Invoice", "USER_B", 2 * time.Hour},
			{"Receive Payment", "USER_B", 3 * time.Hour},
		}},
	}

	for i, c := range cases {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		for _, ev := range c.events {
			e, err := eventlog.NewEvent(ev.activity, start.Add(ev.offset))
			require.NoError(t, err)
			e.Resource = ev.resource
			require.NoError(t, log.AddEvent(c.id, e))
		}
	}
	return log
}

func TestAnalyzeTimeKPIs(t *testing.T) {
	report, err := NewEngine().Analyze(context.Background(), buildSalesLog(t), Inputs{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.CaseCount)
	assert.Equal(t, 17, report.EventCount)

	ct := report.Time.CycleTime
	assert.Equal(t, 4, ct.Count)
	assert.Equal(t, 5*hourMs, ct.Median)
	assert.Equal(t, 3*hourMs, ct.Min)
	assert.Equal(t, 6*hourMs, ct.Max)

	// Touch time equals cycle time here: gaps sum to the case span.
	assert.Equal(t, ct.Median, report.Time.TouchTime.Median)
	assert.Equal(t, 4.25, report.Time.ActivitiesPerCase)

	require.NotNil(t, report.Time.CycleTimeCI)
	assert.Equal(t, 95.0, report.Time.CycleTimeCI.Level)
	assert.Less(t, report.Time.CycleTimeCI.Lower, report.Time.CycleTimeCI.Upper)
	assert.Nil(t, report.Time.TopBottleneck)
}

func TestAnalyzeQualityKPIs(t *testing.T) {
	report, err := NewEngine().Analyze(context.Background(), buildSalesLog(t), Inputs{})
	require.NoError(t, err)

	q := report.Quality
	assert.Equal(t, 2, q.VariantCount)
	assert.Equal(t, 25.0, q.ReworkRate)
	assert.Equal(t, 75.0, q.FirstTimeRightRate)
	assert.Equal(t, 75.0, q.StraightThroughRate)
	assert.Equal(t, 25.0, q.SelfLoopRate)
}

func TestAnalyzeVolumeAndResourceKPIs(t *testing.T) {
	report, err := NewEngine().Analyze(context.Background(), buildSalesLog(t), Inputs{})
	require.NoError(t, err)

	v := report.Volume
	assert.Equal(t, 4, v.CaseCount)
	assert.Equal(t, 17, v.EventCount)
	assert.Equal(t, 4, v.ActivityTypes)
	assert.Greater(t, v.AvgWorkInProgress, 0.0)
	assert.Nil(t, v.Throughput)

	r := report.Resource
	assert.Equal(t, 4, r.ResourceCount)
	assert.Equal(t, 2.25, r.AvgHandoversPerCase)
	// 6 of 17 events are SYSTEM or RFC_* executions.
	assert.Equal(t, 35.29, r.AutomationRate)
	assert.Nil(t, r.SoDViolations)
	assert.Nil(t, r.WorkloadBalance)
}

func TestAnalyzeWithUpstreamInputs(t *testing.T) {
	log := buildSalesLog(t)
	ctx := context.Background()

	variantsResult, err := variants.New(variants.DefaultOptions()).Analyze(ctx, log)
	require.NoError(t, err)
	perfResult, err := performance.New(performance.DefaultOptions()).Analyze(ctx, log)
	require.NoError(t, err)
	socialResult, err := social.New(social.DefaultOptions()).Analyze(ctx, log)
	require.NoError(t, err)
	conformance := &ConformanceResult{Fitness: 0.93, Precision: 0.88, ConformanceRate: 75, AvgDeviationsPerCase: 0.5}

	report, err := NewEngine().Analyze(ctx, log, Inputs{
		Variants:    variantsResult,
		Performance: perfResult,
		Social:      socialResult,
		Conformance: conformance,
	})
	require.NoError(t, err)

	assert.Equal(t, variantsResult.Rework.ReworkRate, report.Quality.ReworkRate)
	assert.Equal(t, variantsResult.ConformantRate, report.Quality.HappyPathRate)
	assert.Equal(t, variantsResult.TotalVariantCount, report.Quality.VariantCount)

	require.NotNil(t, report.Time.TopBottleneck)
	assert.Equal(t, perfResult.Bottlenecks[0].Name, report.Time.TopBottleneck.Name)
	require.NotNil(t, report.Volume.Throughput)
	assert.Equal(t, perfResult.Throughput.TotalCases, report.Volume.Throughput.TotalCases)

	require.NotNil(t, report.Resource.SoDViolations)
	assert.Equal(t, socialResult.SoD.TotalViolations, *report.Resource.SoDViolations)
	require.NotNil(t, report.Resource.WorkloadBalance)

	assert.Equal(t, conformance, report.Conformance)
}

func TestConformanceNilWithoutInput(t *testing.T) {
	report, err := NewEngine().Analyze(context.Background(), buildSalesLog(t), Inputs{})
	require.NoError(t, err)
	assert.Nil(t, report.Conformance)
}

func TestProcessKPIs(t *testing.T) {
	cfg := &catalog.ProcessConfig{
		ID: "TEST",
		KPIs: map[string]catalog.KPISpec{
			"order_to_invoice": {Type: "transition", From: "Create Sales Order", To: "Create Invoice",
				Target: 3, Unit: "hours"},
			"change_ratio": {Type: "ratio", Numerator: "Credit Check", Denominator: "Create Sales Order",
				Target: 50},
		},
	}

	report, err := NewEngine().Analyze(context.Background(), buildSalesLog(t), Inputs{ProcessConfig: cfg})
	require.NoError(t, err)
	require.Len(t, report.Process, 2)

	ratio := report.Process[0]
	assert.Equal(t, "change_ratio", ratio.Name)
	assert.Equal(t, "ratio", ratio.Type)
	// 5 credit checks against 4 orders.
	assert.Equal(t, 125.0, ratio.Value)
	assert.Zero(t, ratio.CompliancePct)

	tr := report.Process[1]
	assert.Equal(t, "order_to_invoice", tr.Name)
	assert.Equal(t, "transition", tr.Type)
	assert.Equal(t, 4, tr.CaseCount)
	assert.Equal(t, 3*hourMs, tr.MedianMs)
	assert.Equal(t, 3*hourMs, tr.TargetMs)
	// Intervals of 2, 4, 3 and 2 hours against a 3 hour target.
	assert.Equal(t, 75.0, tr.CompliancePct)
}

func TestTransitionKPIWithoutMatches(t *testing.T) {
	cfg := &catalog.ProcessConfig{
		KPIs: map[string]catalog.KPISpec{
			"missing": {Type: "transition", From: "Nonexistent", To: "Also Missing", Target: 1, Unit: "days"},
		},
	}
	report, err := NewEngine().Analyze(context.Background(), buildSalesLog(t), Inputs{ProcessConfig: cfg})
	require.NoError(t, err)
	require.Len(t, report.Process, 1)
	assert.Zero(t, report.Process[0].CaseCount)
	assert.Zero(t, report.Process[0].Value)
	assert.Zero(t, report.Process[0].CompliancePct)
}

func TestIsAutomated(t *testing.T) {
	tests := []struct {
		resource string
		want     bool
	}{
		{"SYSTEM", true},
		{"system", true},
		{"BATCH", true},
		{"RFC_BATCH_01", true},
		{"rfc_upload", true},
		{"USER_A", false},
		{"SYSTEMIC", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isAutomated(tt.resource); got != tt.want {
			t.Errorf("isAutomated(%q) = %v, want %v", tt.resource, got, tt.want)
		}
	}
}

func TestAnalyzeEmptyLog(t *testing.T) {
	log := eventlog.New("empty", logging.NewZapLogger(zaptest.NewLogger(t)))
	report, err := NewEngine().Analyze(context.Background(), log, Inputs{})
	require.NoError(t, err)
	assert.Zero(t, report.CaseCount)
	assert.Nil(t, report.Time.CycleTimeCI)
	assert.Equal(t, 100.0, report.Quality.FirstTimeRightRate)
}

func TestAnalyzeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().Analyze(ctx, buildSalesLog(t), Inputs{})
	assert.Error(t, err)
}
