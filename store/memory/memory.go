package memory

import (
	"sync"

	M "funnelcast/model"
)

// Store is an in-memory store for tests and ad-hoc runs from files.
type Store struct {
	lock sync.RWMutex

	Records      []M.FunnelRecord
	Targets      []M.ForecastTarget
	ActiveOwners map[string]bool

	points []M.PointForecast
	daily  []M.DailyProjection
}

func NewStore() *Store {
	return &Store{ActiveOwners: make(map[string]bool)}
}

func (s *Store) GetFunnelRecords() ([]M.FunnelRecord, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]M.FunnelRecord(nil), s.Records...), nil
}

func (s *Store) GetForecastTargets() ([]M.ForecastTarget, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]M.ForecastTarget(nil), s.Targets...), nil
}

func (s *Store) GetActiveOwners() (map[string]bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	owners := make(map[string]bool, len(s.ActiveOwners))
	for id, active := range s.ActiveOwners {
		owners[id] = active
	}
	return owners, nil
}

func (s *Store) ReplacePointForecasts(points []M.PointForecast) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.points = append([]M.PointForecast(nil), points...)
	return nil
}

func (s *Store) ReplaceDailyProjections(rows []M.DailyProjection) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.daily = append([]M.DailyProjection(nil), rows...)
	return nil
}

func (s *Store) GetPointForecasts() ([]M.PointForecast, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]M.PointForecast(nil), s.points...), nil
}

func (s *Store) GetDailyProjections() ([]M.DailyProjection, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return append([]M.DailyProjection(nil), s.daily...), nil
}
