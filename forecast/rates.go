package forecast

import (
	"sort"
	"time"

	M "funnelcast/model"
	U "funnelcast/util"
)

// DefaultTrailingWindowDays is the look-back for conversion rates.
const DefaultTrailingWindowDays = 90

// RateOptions parameterizes one rate estimation pass. The same estimator
// serves both population variants; the variant is a filter, not a fork.
type RateOptions struct {
	AsOf       time.Time
	WindowDays int
	Variant    M.PopulationVariant

	// ActiveOwners is the roster for VariantActiveOwner; ignored otherwise.
	ActiveOwners map[string]bool

	// TeamSizeAdjust optionally rescales an active-owner rate for a
	// (segment, from-stage) pair, e.g. to account for planned headcount
	// changes. Nil leaves rates exactly as computed.
	TeamSizeAdjust func(segment M.Segment, fromStage string, rate float64) float64
}

// EstimateRates computes trailing conversion rates for every adjacent stage
// pair and every segment present in the snapshot.
//
// Eligibility is anchored on the from-stage timestamp falling inside the
// trailing window. Entities are counted distinct by the pair's counting
// identity: lead id for pairs below the sql->sqo boundary, opportunity id at
// and above it. For sql->sqo only records with a decided (Yes/No) status
// enter the denominator; Pending records are excluded from both sides rather
// than being counted as failures.
func EstimateRates(records []M.FunnelRecord, opts RateOptions) []M.StageRate {
	if opts.WindowDays <= 0 {
		opts.WindowDays = DefaultTrailingWindowDays
	}
	windowStart := opts.AsOf.AddDate(0, 0, -opts.WindowDays)

	type pairCounts struct {
		eligible  map[string]bool
		converted map[string]bool
	}
	counts := make(map[M.Segment][]*pairCounts)
	ensure := func(seg M.Segment) []*pairCounts {
		if counts[seg] == nil {
			pairs := make([]*pairCounts, len(M.FunnelStages)-1)
			for i := range pairs {
				pairs[i] = &pairCounts{
					eligible:  make(map[string]bool),
					converted: make(map[string]bool),
				}
			}
			counts[seg] = pairs
		}
		return counts[seg]
	}

	for i := range records {
		r := &records[i]
		pairs := ensure(r.Segment())

		for pi := 0; pi < len(M.FunnelStages)-1; pi++ {
			fromStage := M.FunnelStages[pi]
			toStage := M.FunnelStages[pi+1]

			ts := r.StageTimestamp(fromStage)
			if ts == nil || ts.Before(windowStart) || ts.After(opts.AsOf) {
				continue
			}
			if opts.Variant == M.VariantActiveOwner &&
				!opts.ActiveOwners[r.EffectiveOwnerID(fromStage)] {
				continue
			}

			// The pair's entity is determined by its upper stage: the
			// sql->sqo transition and everything above it happen to the
			// opportunity, not the lead.
			id := r.CountingID(toStage)
			if id == "" {
				continue
			}

			if fromStage == M.StageSQL && toStage == M.StageSQO {
				if !r.SQODecision.IsDecided() {
					continue
				}
				pairs[pi].eligible[id] = true
				if r.SQODecision == M.SQODecisionYes {
					pairs[pi].converted[id] = true
				}
				continue
			}

			pairs[pi].eligible[id] = true
			if r.Reached(toStage) {
				pairs[pi].converted[id] = true
			}
		}
	}

	segments := make([]M.Segment, 0, len(counts))
	for seg := range counts {
		segments = append(segments, seg)
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Channel != segments[j].Channel {
			return segments[i].Channel < segments[j].Channel
		}
		return segments[i].Source < segments[j].Source
	})

	rates := make([]M.StageRate, 0, len(segments)*(len(M.FunnelStages)-1))
	for _, seg := range segments {
		for pi, pc := range counts[seg] {
			rate := U.SafeDivide(float64(len(pc.converted)), float64(len(pc.eligible)))
			if rate != nil && opts.Variant == M.VariantActiveOwner && opts.TeamSizeAdjust != nil {
				adjusted := opts.TeamSizeAdjust(seg, M.FunnelStages[pi], *rate)
				adjusted = U.MinFloat64(U.MaxFloat64(adjusted, 0), 1)
				rate = &adjusted
			}
			rates = append(rates, M.StageRate{
				Segment:   seg,
				FromStage: M.FunnelStages[pi],
				ToStage:   M.FunnelStages[pi+1],
				Variant:   opts.Variant,
				Rate:      rate,
				Eligible:  len(pc.eligible),
				Converted: len(pc.converted),
			})
		}
	}
	return rates
}

// RatesBySegment indexes rate rows by segment and from-stage.
func RatesBySegment(rates []M.StageRate) map[M.Segment]map[string]*float64 {
	indexed := make(map[M.Segment]map[string]*float64)
	for i := range rates {
		r := &rates[i]
		if indexed[r.Segment] == nil {
			indexed[r.Segment] = make(map[string]*float64)
		}
		indexed[r.Segment][r.FromStage] = r.Rate
	}
	return indexed
}
