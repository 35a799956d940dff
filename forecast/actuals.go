package forecast

import (
	"time"

	M "funnelcast/model"
	U "funnelcast/util"
)

// ActualCurve is the cumulative distinct-entity count per calendar day for
// one segment/stage, from period start through the as-of date. Cumulative is
// non-decreasing by construction.
type ActualCurve struct {
	Days       []time.Time
	Cumulative []float64
}

// ValueAt returns the cumulative actual on the given date: 0 before the
// curve starts, the final value after it ends.
func (c *ActualCurve) ValueAt(date time.Time) float64 {
	if c == nil || len(c.Days) == 0 {
		return 0
	}
	i := M.DaysBetween(c.Days[0], date)
	if i < 0 {
		return 0
	}
	if i >= len(c.Cumulative) {
		return c.Cumulative[len(c.Cumulative)-1]
	}
	return c.Cumulative[i]
}

// Final returns the cumulative actual at the end of the curve.
func (c *ActualCurve) Final() float64 {
	if c == nil || len(c.Cumulative) == 0 {
		return 0
	}
	return c.Cumulative[len(c.Cumulative)-1]
}

// BuildActualCurves builds the period-to-date cumulative curve for every
// segment/stage with at least one in-period stage event. Entities are
// deduplicated on their first reach inside the period.
func BuildActualCurves(records []M.FunnelRecord, periodStart, asOf time.Time) map[M.SegmentStage]*ActualCurve {
	start := U.BeginningOfDayZ(periodStart)
	end := U.BeginningOfDayZ(asOf)
	days := U.EachDayZ(start, end)

	firstReach := make(map[M.SegmentStage]map[string]time.Time)
	for _, ev := range NormalizeStageEvents(records) {
		day := U.BeginningOfDayZ(ev.Timestamp)
		if day.Before(start) || day.After(end) {
			continue
		}
		key := M.SegmentStage{Segment: ev.Segment, Stage: ev.Stage}
		if firstReach[key] == nil {
			firstReach[key] = make(map[string]time.Time)
		}
		if existing, ok := firstReach[key][ev.EntityID]; !ok || day.Before(existing) {
			firstReach[key][ev.EntityID] = day
		}
	}

	curves := make(map[M.SegmentStage]*ActualCurve, len(firstReach))
	for key, entities := range firstReach {
		daily := make([]float64, len(days))
		for _, day := range entities {
			daily[M.DaysBetween(start, day)]++
		}

		cumulative := make([]float64, len(days))
		var running float64
		for i, v := range daily {
			running += v
			cumulative[i] = running
		}
		curves[key] = &ActualCurve{Days: days, Cumulative: cumulative}
	}
	return curves
}

// ActualsToDate collapses the curves into the as-of cumulative count per
// segment/stage.
func ActualsToDate(curves map[M.SegmentStage]*ActualCurve) map[M.SegmentStage]float64 {
	actuals := make(map[M.SegmentStage]float64, len(curves))
	for key, curve := range curves {
		actuals[key] = curve.Final()
	}
	return actuals
}
