package forecast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	M "funnelcast/model"
)

var testAsOf = time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)

func tsDaysAgo(days int) *time.Time {
	t := testAsOf.AddDate(0, 0, -days)
	return &t
}

func testSegment() M.Segment {
	return M.Segment{Channel: "paid", Source: "google"}
}

func sqlRecord(i int, decision M.SQODecision) M.FunnelRecord {
	r := M.FunnelRecord{
		LeadID:        fmt.Sprintf("l%d", i),
		OpportunityID: fmt.Sprintf("o%d", i),
		Channel:       "paid",
		Source:        "google",
		ContactedAt:   tsDaysAgo(30),
		MQLAt:         tsDaysAgo(25),
		SQLAt:         tsDaysAgo(20),
		SQODecision:   decision,
	}
	if decision == M.SQODecisionYes {
		r.SQOAt = tsDaysAgo(10)
	}
	return r
}

func rateFor(rates []M.StageRate, fromStage string) *M.StageRate {
	for i := range rates {
		if rates[i].FromStage == fromStage {
			return &rates[i]
		}
	}
	return nil
}

// 40 Yes, 20 No and 40 Pending must yield 40/60, not 40/100: pending
// decisions stay out of both sides of the division.
func TestSQLToSQORateExcludesPending(t *testing.T) {
	records := make([]M.FunnelRecord, 0, 100)
	for i := 0; i < 40; i++ {
		records = append(records, sqlRecord(i, M.SQODecisionYes))
	}
	for i := 40; i < 60; i++ {
		records = append(records, sqlRecord(i, M.SQODecisionNo))
	}
	for i := 60; i < 100; i++ {
		records = append(records, sqlRecord(i, M.SQODecisionPending))
	}

	rates := EstimateRates(records, RateOptions{AsOf: testAsOf})
	rate := rateFor(rates, M.StageSQL)

	assert.NotNil(t, rate)
	assert.Equal(t, 60, rate.Eligible)
	assert.Equal(t, 40, rate.Converted)
	assert.GreaterOrEqual(t, rate.Eligible, rate.Converted)
	assert.InDelta(t, 0.6667, *rate.Rate, 0.0001)
}

func TestRateNilOnZeroEligible(t *testing.T) {
	// Only pending records: the sql->sqo denominator is empty, so the rate
	// is undefined, not zero.
	records := []M.FunnelRecord{sqlRecord(1, M.SQODecisionPending)}

	rates := EstimateRates(records, RateOptions{AsOf: testAsOf})
	assert.Nil(t, rateFor(rates, M.StageSQL).Rate)
	assert.Nil(t, rateFor(rates, M.StageSQO).Rate)
}

func TestRateTrailingWindow(t *testing.T) {
	inWindow := sqlRecord(1, M.SQODecisionYes)
	outOfWindow := sqlRecord(2, M.SQODecisionNo)
	outOfWindow.SQLAt = tsDaysAgo(120)

	rates := EstimateRates([]M.FunnelRecord{inWindow, outOfWindow},
		RateOptions{AsOf: testAsOf, WindowDays: 90})
	rate := rateFor(rates, M.StageSQL)

	assert.Equal(t, 1, rate.Eligible)
	assert.Equal(t, 1.0, *rate.Rate)
}

func TestLeadStageRateCountsByLeadID(t *testing.T) {
	// Two records sharing a lead id are one entity for lead-stage pairs.
	a := sqlRecord(1, M.SQODecisionPending)
	b := sqlRecord(2, M.SQODecisionPending)
	b.LeadID = a.LeadID
	b.MQLAt = nil
	b.SQLAt = nil

	rates := EstimateRates([]M.FunnelRecord{a, b}, RateOptions{AsOf: testAsOf})
	rate := rateFor(rates, M.StageContacted)

	assert.Equal(t, 1, rate.Eligible)
	assert.Equal(t, 1, rate.Converted)
}

func TestActiveOwnerVariantFiltersBothSides(t *testing.T) {
	active := sqlRecord(1, M.SQODecisionYes)
	active.LeadOwnerID = "sdr1"
	departed := sqlRecord(2, M.SQODecisionNo)
	departed.LeadOwnerID = "sdr2"

	rates := EstimateRates([]M.FunnelRecord{active, departed}, RateOptions{
		AsOf:         testAsOf,
		Variant:      M.VariantActiveOwner,
		ActiveOwners: map[string]bool{"sdr1": true},
	})
	rate := rateFor(rates, M.StageSQL)

	// The departed owner's loss is invisible, so the rate skews high.
	assert.Equal(t, 1, rate.Eligible)
	assert.Equal(t, 1.0, *rate.Rate)

	fullRates := EstimateRates([]M.FunnelRecord{active, departed},
		RateOptions{AsOf: testAsOf})
	assert.Equal(t, 0.5, *rateFor(fullRates, M.StageSQL).Rate)
}

func TestTeamSizeAdjustOnlyTouchesActiveOwnerVariant(t *testing.T) {
	record := sqlRecord(1, M.SQODecisionYes)
	record.LeadOwnerID = "sdr1"
	records := []M.FunnelRecord{record}
	halve := func(seg M.Segment, fromStage string, rate float64) float64 {
		return rate / 2
	}

	adjusted := EstimateRates(records, RateOptions{
		AsOf:           testAsOf,
		Variant:        M.VariantActiveOwner,
		ActiveOwners:   map[string]bool{"sdr1": true},
		TeamSizeAdjust: halve,
	})
	assert.Equal(t, 0.5, *rateFor(adjusted, M.StageSQL).Rate)

	full := EstimateRates(records, RateOptions{AsOf: testAsOf, TeamSizeAdjust: halve})
	assert.Equal(t, 1.0, *rateFor(full, M.StageSQL).Rate)
}
