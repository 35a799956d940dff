package forecast

import (
	M "funnelcast/model"
	U "funnelcast/util"
)

// EstimateVolatility computes the day-over-day growth standard deviation of
// each cumulative-actual curve over the trailing window. A flat curve yields
// 0, never a missing value: zero observed variability is a real measurement.
func EstimateVolatility(curves map[M.SegmentStage]*ActualCurve, windowDays int) map[M.SegmentStage]float64 {
	if windowDays <= 0 {
		windowDays = DefaultTrailingWindowDays
	}

	stddevs := make(map[M.SegmentStage]float64, len(curves))
	for key, curve := range curves {
		deltas := U.DayOverDayDeltas(curve.Cumulative)
		if len(deltas) > windowDays {
			deltas = deltas[len(deltas)-windowDays:]
		}
		stddevs[key] = U.StdDev(deltas)
	}
	return stddevs
}
