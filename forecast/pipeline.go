package forecast

import (
	"sort"
	"time"

	M "funnelcast/model"
	U "funnelcast/util"
)

// PipelineOptions parameterizes the open-pipeline scan.
type PipelineOptions struct {
	PeriodStart time.Time
	AsOf        time.Time
	Variant     M.PopulationVariant

	// ActiveOwners is the roster for VariantActiveOwner; ignored otherwise.
	ActiveOwners map[string]bool
}

// AggregatePipeline counts the in-flight population per segment and stage:
// records that reached the stage but not the next one, are not terminal-lost,
// and whose cohort date falls inside the period-to-date window. The terminal
// stage has no open count, there is nothing left to advance to.
func AggregatePipeline(records []M.FunnelRecord, opts PipelineOptions) []M.OpenPipelineCount {
	start := U.BeginningOfDayZ(opts.PeriodStart)
	end := U.BeginningOfDayZ(opts.AsOf)

	open := make(map[M.SegmentStage]map[string]bool)
	for i := range records {
		r := &records[i]
		if r.TerminalLost {
			continue
		}
		cohortDay := U.BeginningOfDayZ(r.FilterDate)
		if cohortDay.Before(start) || cohortDay.After(end) {
			continue
		}

		for si := 0; si < len(M.FunnelStages)-1; si++ {
			stage := M.FunnelStages[si]
			if !r.Reached(stage) || r.Reached(M.FunnelStages[si+1]) {
				continue
			}
			if opts.Variant == M.VariantActiveOwner &&
				!opts.ActiveOwners[r.EffectiveOwnerID(stage)] {
				continue
			}
			id := r.CountingID(stage)
			if id == "" {
				continue
			}

			key := M.SegmentStage{Segment: r.Segment(), Stage: stage}
			if open[key] == nil {
				open[key] = make(map[string]bool)
			}
			open[key][id] = true
		}
	}

	counts := make([]M.OpenPipelineCount, 0, len(open))
	for key, entities := range open {
		counts = append(counts, M.OpenPipelineCount{
			Segment: key.Segment,
			Stage:   key.Stage,
			Variant: opts.Variant,
			Count:   len(entities),
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Segment.Channel != counts[j].Segment.Channel {
			return counts[i].Segment.Channel < counts[j].Segment.Channel
		}
		if counts[i].Segment.Source != counts[j].Segment.Source {
			return counts[i].Segment.Source < counts[j].Segment.Source
		}
		return M.StageIndex(counts[i].Stage) < M.StageIndex(counts[j].Stage)
	})
	return counts
}

// OpenBySegment indexes open counts by segment and stage.
func OpenBySegment(counts []M.OpenPipelineCount) map[M.Segment]map[string]float64 {
	indexed := make(map[M.Segment]map[string]float64)
	for i := range counts {
		c := &counts[i]
		if indexed[c.Segment] == nil {
			indexed[c.Segment] = make(map[string]float64)
		}
		indexed[c.Segment][c.Stage] = float64(c.Count)
	}
	return indexed
}
