package forecast

import (
	"time"

	M "funnelcast/model"
)

// StageEvent is one (entity, stage, timestamp) reach tuple. Records are
// normalized into these once at ingestion; every downstream scan consumes
// the same tuples instead of re-deriving per-stage fields.
type StageEvent struct {
	EntityID  string
	Segment   M.Segment
	Stage     string
	Timestamp time.Time
}

// NormalizeStageEvents flattens the snapshot into stage events. A stage the
// record never reached, or a stage whose counting identity is absent on the
// record, yields no event.
func NormalizeStageEvents(records []M.FunnelRecord) []StageEvent {
	events := make([]StageEvent, 0, len(records))
	for i := range records {
		r := &records[i]
		for _, stage := range M.FunnelStages {
			ts := r.StageTimestamp(stage)
			if ts == nil {
				continue
			}
			id := r.CountingID(stage)
			if id == "" {
				continue
			}
			events = append(events, StageEvent{
				EntityID:  id,
				Segment:   r.Segment(),
				Stage:     stage,
				Timestamp: *ts,
			})
		}
	}
	return events
}
