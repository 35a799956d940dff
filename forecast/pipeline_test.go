package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	M "funnelcast/model"
)

func openCountFor(counts []M.OpenPipelineCount, stage string) int {
	for _, c := range counts {
		if c.Stage == stage {
			return c.Count
		}
	}
	return 0
}

func TestAggregatePipelineOpenDefinition(t *testing.T) {
	periodStart := testAsOf.AddDate(0, 0, -20)

	atMQL := M.FunnelRecord{
		LeadID: "l1", Channel: "paid", Source: "google",
		ContactedAt: tsDaysAgo(15), MQLAt: tsDaysAgo(10),
		FilterDate: testAsOf.AddDate(0, 0, -10),
	}
	advanced := M.FunnelRecord{
		LeadID: "l2", Channel: "paid", Source: "google",
		ContactedAt: tsDaysAgo(15), MQLAt: tsDaysAgo(10), SQLAt: tsDaysAgo(5),
		FilterDate: testAsOf.AddDate(0, 0, -10),
	}
	lost := M.FunnelRecord{
		LeadID: "l3", Channel: "paid", Source: "google",
		ContactedAt: tsDaysAgo(15), MQLAt: tsDaysAgo(10), TerminalLost: true,
		FilterDate: testAsOf.AddDate(0, 0, -10),
	}
	outOfCohort := M.FunnelRecord{
		LeadID: "l4", Channel: "paid", Source: "google",
		ContactedAt: tsDaysAgo(40), MQLAt: tsDaysAgo(35),
		FilterDate: testAsOf.AddDate(0, 0, -35),
	}

	counts := AggregatePipeline(
		[]M.FunnelRecord{atMQL, advanced, lost, outOfCohort},
		PipelineOptions{PeriodStart: periodStart, AsOf: testAsOf})

	// Only l1 is open at mql: l2 advanced, l3 is lost, l4's cohort date
	// precedes the period.
	assert.Equal(t, 1, openCountFor(counts, M.StageMQL))
	assert.Equal(t, 1, openCountFor(counts, M.StageSQL))
	assert.Equal(t, 0, openCountFor(counts, M.StageSQO))
}

func TestAggregatePipelineNoTerminalStageCount(t *testing.T) {
	joined := M.FunnelRecord{
		LeadID: "l1", OpportunityID: "o1", Channel: "paid", Source: "google",
		ContactedAt: tsDaysAgo(15), MQLAt: tsDaysAgo(12), SQLAt: tsDaysAgo(10),
		SQOAt: tsDaysAgo(5), JoinedAt: tsDaysAgo(1),
		SQODecision: M.SQODecisionYes,
		FilterDate:  testAsOf.AddDate(0, 0, -10),
	}

	counts := AggregatePipeline([]M.FunnelRecord{joined},
		PipelineOptions{PeriodStart: testAsOf.AddDate(0, 0, -20), AsOf: testAsOf})

	for _, c := range counts {
		assert.NotEqual(t, M.StageJoined, c.Stage)
		assert.Equal(t, 0, c.Count)
	}
	assert.Empty(t, counts)
}

func TestAggregatePipelineActiveOwnerVariant(t *testing.T) {
	periodStart := testAsOf.AddDate(0, 0, -20)
	mine := M.FunnelRecord{
		LeadID: "l1", Channel: "paid", Source: "google", LeadOwnerID: "sdr1",
		ContactedAt: tsDaysAgo(10), FilterDate: testAsOf.AddDate(0, 0, -10),
	}
	orphaned := M.FunnelRecord{
		LeadID: "l2", Channel: "paid", Source: "google", LeadOwnerID: "sdr2",
		ContactedAt: tsDaysAgo(10), FilterDate: testAsOf.AddDate(0, 0, -10),
	}

	counts := AggregatePipeline([]M.FunnelRecord{mine, orphaned}, PipelineOptions{
		PeriodStart:  periodStart,
		AsOf:         testAsOf,
		Variant:      M.VariantActiveOwner,
		ActiveOwners: map[string]bool{"sdr1": true},
	})
	assert.Equal(t, 1, openCountFor(counts, M.StageContacted))
}

func TestAggregatePipelineDistinctEntities(t *testing.T) {
	filterDate := testAsOf.AddDate(0, 0, -5)
	a := M.FunnelRecord{LeadID: "l1", Channel: "paid", Source: "google",
		ContactedAt: tsDaysAgo(5), FilterDate: filterDate}
	b := M.FunnelRecord{LeadID: "l1", Channel: "paid", Source: "google",
		ContactedAt: tsDaysAgo(4), FilterDate: filterDate}

	counts := AggregatePipeline([]M.FunnelRecord{a, b}, PipelineOptions{
		PeriodStart: testAsOf.AddDate(0, 0, -20), AsOf: testAsOf})
	assert.Equal(t, 1, openCountFor(counts, M.StageContacted))
}

func TestAggregatePipelineCohortWindowBounds(t *testing.T) {
	periodStart := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	onStart := M.FunnelRecord{LeadID: "l1", Channel: "c", Source: "s",
		ContactedAt: tsDaysAgo(5), FilterDate: periodStart}
	onAsOf := M.FunnelRecord{LeadID: "l2", Channel: "c", Source: "s",
		ContactedAt: tsDaysAgo(5), FilterDate: testAsOf}

	counts := AggregatePipeline([]M.FunnelRecord{onStart, onAsOf},
		PipelineOptions{PeriodStart: periodStart, AsOf: testAsOf})
	assert.Equal(t, 2, openCountFor(counts, M.StageContacted))
}
