package forecast

import (
	M "funnelcast/model"
	U "funnelcast/util"
)

// CascadeInput is everything the cascade needs for one segment. Maps are
// keyed by stage; missing keys mean 0, undefined rates are nil.
type CascadeInput struct {
	Segment M.Segment

	// Open is the in-flight count per stage (entry through second-to-last).
	Open map[string]float64

	// RemainingTarget is the unmet entry-stage target. New demand is assumed
	// to arrive at the top of the funnel only.
	RemainingTarget float64

	// Rates maps a from-stage to its conversion rate toward the next stage.
	Rates map[string]*float64

	// Actuals is the period-to-date count per stage.
	Actuals map[string]float64
}

// CascadeResult carries the projected populations for one segment.
type CascadeResult struct {
	Segment M.Segment

	// Future is the expected count of conversions still to come per stage;
	// always 0 for the entry stage.
	Future map[string]float64

	// Pool is the population eligible to advance out of each stage: open
	// pipeline plus projected arrivals.
	Pool map[string]float64

	// Predicted is actual + future per stage.
	Predicted map[string]float64
}

// RunCascade propagates open pipeline and remaining target down the funnel.
// Each stage's future population is the upstream pool times the conversion
// rate, so uncertainty compounds multiplicatively through the chain; one
// undefined (nil) rate zeroes every contribution flowing through it. A
// brand-new segment with no history therefore collapses to predicted =
// actual, which is the correct projection, not a failure.
func RunCascade(in CascadeInput) CascadeResult {
	stages := M.FunnelStages
	future := make(map[string]float64, len(stages))
	pool := make(map[string]float64, len(stages))
	predicted := make(map[string]float64, len(stages))

	entry := stages[0]
	future[entry] = 0
	pool[entry] = in.Open[entry] + in.RemainingTarget
	future[stages[1]] = pool[entry] * U.Coalesce(in.Rates[entry], 0)

	for i := 1; i < len(stages)-1; i++ {
		stage := stages[i]
		pool[stage] = in.Open[stage] + future[stage]
		future[stages[i+1]] = pool[stage] * U.Coalesce(in.Rates[stage], 0)
	}

	predicted[entry] = in.Actuals[entry]
	for i := 1; i < len(stages); i++ {
		stage := stages[i]
		predicted[stage] = in.Actuals[stage] + future[stage]
	}

	return CascadeResult{
		Segment:   in.Segment,
		Future:    future,
		Pool:      pool,
		Predicted: predicted,
	}
}
