package forecast

import (
	"sort"

	M "funnelcast/model"
)

// AssembleInput gathers every upstream product keyed by segment/stage.
type AssembleInput struct {
	// Targets is the period target total per segment/stage.
	Targets map[M.SegmentStage]float64

	// Actuals is the period-to-date count per segment/stage.
	Actuals map[M.SegmentStage]float64

	// Cascades is the cascade result per segment.
	Cascades map[M.Segment]CascadeResult

	// Stddevs is the daily growth standard deviation per segment/stage.
	Stddevs map[M.SegmentStage]float64
}

// Assemble outer-joins the upstream products into one PointForecast row per
// (segment, stage). The segment universe is the union of everything the
// targets, actuals and cascades mention; every segment gets a row for every
// stage, with counts coalesced to 0, so the output shape is deterministic
// regardless of which inputs were sparse.
func Assemble(in AssembleInput) []M.PointForecast {
	universe := make(map[M.Segment]bool)
	for key := range in.Targets {
		universe[key.Segment] = true
	}
	for key := range in.Actuals {
		universe[key.Segment] = true
	}
	for seg := range in.Cascades {
		universe[seg] = true
	}

	segments := make([]M.Segment, 0, len(universe))
	for seg := range universe {
		segments = append(segments, seg)
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Channel != segments[j].Channel {
			return segments[i].Channel < segments[j].Channel
		}
		return segments[i].Source < segments[j].Source
	})

	points := make([]M.PointForecast, 0, len(segments)*len(M.FunnelStages))
	for _, seg := range segments {
		cascade, hasCascade := in.Cascades[seg]
		for _, stage := range M.FunnelStages {
			key := M.SegmentStage{Segment: seg, Stage: stage}

			actual := in.Actuals[key]
			predicted := actual
			if hasCascade {
				predicted = cascade.Predicted[stage]
			}

			points = append(points, M.PointForecast{
				Channel:        seg.Channel,
				Source:         seg.Source,
				Stage:          stage,
				ForecastValue:  in.Targets[key],
				ActualValue:    actual,
				PredictedValue: predicted,
				StddevDaily:    in.Stddevs[key],
			})
		}
	}
	return points
}
