package variants

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/procflow/procflow/pkg/defaults/logging"
	"github.com/procflow/procflow/pkg/eventlog"
)

var (
	happySeq   = []string{"Create Purchase Requisition", "Create Purchase Order", "Goods Receipt", "Invoice Receipt", "Payment"}
	swappedSeq = []string{"Create Purchase Requisition", "Create Purchase Order", "Invoice Receipt", "Goods Receipt", "Payment"}
	dupGRSeq   = []string{"Create Purchase Requisition", "Create Purchase Order", "Goods Receipt", "Goods Receipt", "Invoice Receipt", "Payment"}
	shortSeq   = []string{"Create Purchase Requisition", "Create Purchase Order", "Payment"}
)

// buildProcureLog builds a 15-case purchase log: 6 happy, 4 with a repeated
// goods receipt, 3 with receipt and invoice swapped, 2 cut short. The two
// short cases carry orderType=emergency, the rest orderType=standard.
func buildProcureLog(t *testing.T) *eventlog.EventLog {
	t.Helper()
	log := eventlog.New("p2p-sample", logging.NewZapLogger(zaptest.NewLogger(t)))
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	caseNo := 0
	add := func(n int, seq []string, orderType string) {
		for i := 0; i < n; i++ {
			caseNo++
			caseID := fmt.Sprintf("PO-%04d", caseNo)
			start := base.Add(time.Duration(caseNo) * 6 * time.Hour)
			for j, activity := range seq {
				ev, err := eventlog.NewEvent(activity, start.Add(time.Duration(j)*time.Hour))
				require.NoError(t, err)
				require.NoError(t, log.AddEvent(caseID, ev))
			}
			log.Trace(caseID).Attributes.Set("orderType", eventlog.StringValue(orderType))
		}
	}

	add(6, happySeq, "standard")
	add(4, dupGRSeq, "standard")
	add(3, swappedSeq, "standard")
	add(2, shortSeq, "emergency")
	return log
}

func TestAnalyzeVariants(t *testing.T) {
	result, err := New(DefaultOptions()).Analyze(context.Background(), buildProcureLog(t))
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalVariantCount)
	assert.Equal(t, 15, result.CaseCount)
	require.Len(t, result.Variants, 4)

	top := result.Variants[0]
	assert.Equal(t, eventlog.VariantKey(happySeq), top.Key)
	assert.Equal(t, 6, top.Count)
	assert.Equal(t, 40.0, top.Percentage)
	assert.True(t, top.IsReworkFree)
	assert.Equal(t, 5, top.UniqueActivityCount)
	assert.Equal(t, 6, top.DurationStats.Count)

	dup := result.Variants[1]
	assert.Equal(t, 4, dup.Count)
	assert.True(t, dup.HasRework)
	require.Len(t, dup.ReworkActivities, 1)
	assert.Equal(t, ReworkActivity{Activity: "Goods Receipt", Occurrences: 2}, dup.ReworkActivities[0])
	assert.Equal(t, 5, dup.UniqueActivityCount)
}

func TestHappyPathAndConformance(t *testing.T) {
	result, err := New(DefaultOptions()).Analyze(context.Background(), buildProcureLog(t))
	require.NoError(t, err)

	require.NotNil(t, result.HappyPath)
	assert.Equal(t, eventlog.VariantKey(happySeq), result.HappyPath.Key)
	assert.Equal(t, 6, result.HappyPath.Count)
	assert.Equal(t, 40.0, result.ConformantRate)
}

func TestHappyPathFallsBackToMostFrequent(t *testing.T) {
	log := eventlog.New("rework-only", logging.NewZapLogger(zaptest.NewLogger(t)))
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, activity := range []string{"A", "B", "A"} {
		ev, err := eventlog.NewEvent(activity, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.NoError(t, log.AddEvent("C1", ev))
	}

	result, err := New(DefaultOptions()).Analyze(context.Background(), log)
	require.NoError(t, err)
	require.NotNil(t, result.HappyPath)
	assert.False(t, result.HappyPath.IsReworkFree)
	assert.Equal(t, "A -> B -> A", result.HappyPath.Key)
}

func TestReworkSummary(t *testing.T) {
	result, err := New(DefaultOptions()).Analyze(context.Background(), buildProcureLog(t))
	require.NoError(t, err)

	rw := result.Rework
	assert.Equal(t, 4, rw.CasesWithRework)
	assert.Equal(t, 26.67, rw.ReworkRate)
	assert.Equal(t, 73.33, rw.FirstTimeRightRate)
	assert.Equal(t, 4, rw.TotalExtraOccurrences)
	require.Len(t, rw.ActivityRanking, 1)
	assert.Equal(t, ReworkActivity{Activity: "Goods Receipt", Occurrences: 4}, rw.ActivityRanking[0])
}

func TestClusterVariants(t *testing.T) {
	result, err := New(DefaultOptions()).Analyze(context.Background(), buildProcureLog(t))
	require.NoError(t, err)

	// The duplicated-receipt variant is one edit from the happy path and
	// joins its cluster; the swapped and short variants stand alone.
	require.Len(t, result.Clusters, 3)

	first := result.Clusters[0]
	assert.Equal(t, 0, first.ID)
	assert.Equal(t, eventlog.VariantKey(happySeq), first.Seed)
	assert.Len(t, first.Variants, 2)
	assert.Equal(t, 10, first.CaseCount)

	assert.Equal(t, eventlog.VariantKey(swappedSeq), result.Clusters[1].Seed)
	assert.Equal(t, 3, result.Clusters[1].CaseCount)
	assert.Equal(t, eventlog.VariantKey(shortSeq), result.Clusters[2].Seed)
	assert.Equal(t, 2, result.Clusters[2].CaseCount)
}

func TestFindDeviations(t *testing.T) {
	result, err := New(DefaultOptions()).Analyze(context.Background(), buildProcureLog(t))
	require.NoError(t, err)

	require.Len(t, result.Deviations, 3)
	byKey := make(map[string]Deviation, len(result.Deviations))
	for _, d := range result.Deviations {
		byKey[d.Key] = d
	}

	dup := byKey[eventlog.VariantKey(dupGRSeq)]
	assert.Equal(t, 4, dup.CaseCount)
	assert.Equal(t, 1, dup.EditDistance)
	assert.Equal(t, 0.167, dup.NormalizedDistance)
	assert.Equal(t, DeviationReorder, dup.Type)
	assert.Empty(t, dup.SkippedActivities)
	assert.Empty(t, dup.InsertedActivities)

	swapped := byKey[eventlog.VariantKey(swappedSeq)]
	assert.Equal(t, 2, swapped.EditDistance)
	assert.Equal(t, 0.4, swapped.NormalizedDistance)
	assert.Equal(t, DeviationReorder, swapped.Type)

	short := byKey[eventlog.VariantKey(shortSeq)]
	assert.Equal(t, DeviationSkip, short.Type)
	assert.Equal(t, []string{"Goods Receipt", "Invoice Receipt"}, short.SkippedActivities)
	assert.Equal(t, 2, short.EditDistance)
}

func TestFindRootCauses(t *testing.T) {
	result, err := New(DefaultOptions()).Analyze(context.Background(), buildProcureLog(t))
	require.NoError(t, err)

	require.Len(t, result.RootCauses, 1)
	cause := result.RootCauses[0]
	assert.Equal(t, eventlog.VariantKey(shortSeq), cause.Variant)
	assert.Equal(t, "orderType", cause.Attribute)
	assert.Equal(t, "emergency", cause.Value)
	// P(short | emergency) = 1 against P(short) = 2/15.
	assert.Equal(t, 7.5, cause.Lift)
	assert.Equal(t, 2, cause.CasesInBoth)
	assert.Equal(t, 2, cause.CasesWithValue)
	assert.Equal(t, "positive", cause.Direction)
}

func TestAnalyzeEmptyLog(t *testing.T) {
	log := eventlog.New("empty", logging.NewZapLogger(zaptest.NewLogger(t)))
	result, err := New(DefaultOptions()).Analyze(context.Background(), log)
	require.NoError(t, err)
	assert.Zero(t, result.TotalVariantCount)
	assert.Nil(t, result.HappyPath)
	assert.Equal(t, 100.0, result.Rework.FirstTimeRightRate)
}

func TestAnalyzeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(DefaultOptions()).Analyze(ctx, buildProcureLog(t))
	assert.Error(t, err)
}
