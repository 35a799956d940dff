package forecast

import (
	M "funnelcast/model"
	U "funnelcast/util"
)

// SumTargetsByStage collapses sub-period target rows into period totals per
// segment/stage. Duplicate rows for the same (segment, stage, sub-period)
// key are additive; the returned count of duplicates is a data-quality
// signal for the caller to log, not an error.
func SumTargetsByStage(targets []M.ForecastTarget) (map[M.SegmentStage]float64, int) {
	totals := make(map[M.SegmentStage]float64)
	seen := make(map[M.ForecastTarget]bool)
	duplicates := 0

	for _, t := range targets {
		dedupKey := M.ForecastTarget{
			Channel:        t.Channel,
			Source:         t.Source,
			Stage:          t.Stage,
			SubPeriodStart: M.DateOnly(t.SubPeriodStart),
		}
		if seen[dedupKey] {
			duplicates++
		}
		seen[dedupKey] = true

		key := M.SegmentStage{Segment: t.Segment(), Stage: t.Stage}
		totals[key] += t.Target
	}
	return totals, duplicates
}

// RemainingTargets computes how much of each target is still unmet:
// max(0, target - actual). Targets are always full-population values even
// when actuals come from the active-owner variant; that mismatch is part of
// the contract, consumers compare staffed capacity against the full goal.
func RemainingTargets(targets map[M.SegmentStage]float64, actuals map[M.SegmentStage]float64) map[M.SegmentStage]float64 {
	remaining := make(map[M.SegmentStage]float64, len(targets))
	for key, target := range targets {
		remaining[key] = U.MaxFloat64(0, target-actuals[key])
	}
	return remaining
}
