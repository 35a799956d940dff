package forecast

import (
	"math"
	"time"

	"github.com/jinzhu/now"

	M "funnelcast/model"
	U "funnelcast/util"
)

// ConfidenceZ is the z-score of the 95% confidence band.
const ConfidenceZ = 1.96

// ProjectorInput is the assembled forecast plus the raw curves and targets
// the daily series is drawn from.
type ProjectorInput struct {
	Points  []M.PointForecast
	Curves  map[M.SegmentStage]*ActualCurve
	Targets []M.ForecastTarget
}

// ProjectDaily expands the point forecast into one row per segment, stage and
// calendar day of the period.
//
// Through the as-of date the row reports the observed cumulative actual and
// the bounds collapse onto it. Beyond the as-of date the predicted value is
// interpolated linearly from the current actual to the period-end point
// forecast, and the confidence band follows a random-walk model: variance
// accumulates linearly with elapsed days, so the half-width is
// ConfidenceZ * stddev_daily * sqrt(days out). The lower bound never drops
// below the current actual; projected uncertainty cannot unwind what has
// already been observed.
//
// The target column is piecewise-linear: within each calendar month it climbs
// from the cumulative target at the month's start to the cumulative target at
// its end, so the slope steps at month boundaries per each month's quota.
func ProjectDaily(in ProjectorInput, period M.Period) []M.DailyProjection {
	days := U.EachDayZ(period.Start, period.End)
	asOf := U.BeginningOfDayZ(period.AsOf)
	daysRemaining := M.DaysBetween(asOf, U.BeginningOfDayZ(period.End))

	monthlyTargets := targetsByMonth(in.Targets)

	rows := make([]M.DailyProjection, 0, len(in.Points)*len(days))
	for i := range in.Points {
		point := &in.Points[i]
		key := M.SegmentStage{Segment: point.Segment(), Stage: point.Stage}
		curve := in.Curves[key]
		actualToDate := curve.ValueAt(asOf)
		targetCurve := newTargetCurve(monthlyTargets[key], period)

		for _, day := range days {
			row := M.DailyProjection{
				Channel: point.Channel,
				Source:  point.Source,
				Stage:   point.Stage,
				Date:    day,
				Target:  targetCurve.valueAt(day),
			}

			if !day.After(asOf) {
				actual := curve.ValueAt(day)
				row.Actual = actual
				row.Predicted = actual
				row.Lower = actual
				row.Upper = actual
			} else {
				d := float64(M.DaysBetween(asOf, day))
				predicted := actualToDate
				if daysRemaining > 0 {
					predicted += d * (point.PredictedValue - actualToDate) / float64(daysRemaining)
				}
				halfWidth := ConfidenceZ * point.StddevDaily * math.Sqrt(d)

				row.Actual = actualToDate
				row.Predicted = predicted
				row.Lower = U.MaxFloat64(actualToDate, predicted-halfWidth)
				row.Upper = predicted + halfWidth
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// targetsByMonth sums target rows into per-month totals per segment/stage.
func targetsByMonth(targets []M.ForecastTarget) map[M.SegmentStage]map[time.Time]float64 {
	monthly := make(map[M.SegmentStage]map[time.Time]float64)
	for _, t := range targets {
		key := M.SegmentStage{Segment: t.Segment(), Stage: t.Stage}
		if monthly[key] == nil {
			monthly[key] = make(map[time.Time]float64)
		}
		month := now.New(U.BeginningOfDayZ(t.SubPeriodStart)).BeginningOfMonth()
		monthly[key][month] += t.Target
	}
	return monthly
}

// targetCurve renders the cumulative piecewise-linear target line for one
// segment/stage across the period.
type targetCurve struct {
	period M.Period

	// cumBefore is the cumulative target at each in-period month's first day;
	// perMonth is that month's own quota.
	cumBefore map[time.Time]float64
	perMonth  map[time.Time]float64
}

func newTargetCurve(monthTargets map[time.Time]float64, period M.Period) *targetCurve {
	curve := &targetCurve{
		period:    period,
		cumBefore: make(map[time.Time]float64),
		perMonth:  make(map[time.Time]float64),
	}

	start := U.BeginningOfDayZ(period.Start)
	end := U.BeginningOfDayZ(period.End)

	var running float64
	for month := now.New(start).BeginningOfMonth(); !month.After(end); month = month.AddDate(0, 1, 0) {
		curve.cumBefore[month] = running
		curve.perMonth[month] = monthTargets[month]
		running += monthTargets[month]
	}
	return curve
}

// valueAt interpolates the cumulative target for a day: the total of all
// prior months plus the day's pro-rata share of its own month's quota.
// Months clipped by the period boundaries pro-rate over their in-period
// days only.
func (c *targetCurve) valueAt(day time.Time) float64 {
	month := now.New(day).BeginningOfMonth()

	monthStart := month
	if monthStart.Before(U.BeginningOfDayZ(c.period.Start)) {
		monthStart = U.BeginningOfDayZ(c.period.Start)
	}
	monthEnd := U.BeginningOfDayZ(now.New(day).EndOfMonth())
	if monthEnd.After(U.BeginningOfDayZ(c.period.End)) {
		monthEnd = U.BeginningOfDayZ(c.period.End)
	}

	daysInMonth := float64(M.DaysBetween(monthStart, monthEnd) + 1)
	dayOfMonth := float64(M.DaysBetween(monthStart, day) + 1)

	return c.cumBefore[month] + c.perMonth[month]*dayOfMonth/daysInMonth
}
