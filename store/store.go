package store

import (
	M "funnelcast/model"
)

// Store is the persistence boundary of the pipeline: the merged funnel
// snapshot and target table on the way in, the two forecast tables on the
// way out. The snapshot and targets are owned by external systems; this
// module only ever reads them.
type Store interface {
	GetFunnelRecords() ([]M.FunnelRecord, error)
	GetForecastTargets() ([]M.ForecastTarget, error)
	GetActiveOwners() (map[string]bool, error)

	// ReplacePointForecasts and ReplaceDailyProjections swap the output
	// tables wholesale, so a re-run with the same inputs leaves an
	// identical row set behind.
	ReplacePointForecasts(points []M.PointForecast) error
	ReplaceDailyProjections(rows []M.DailyProjection) error

	GetPointForecasts() ([]M.PointForecast, error)
	GetDailyProjections() ([]M.DailyProjection, error)
}
