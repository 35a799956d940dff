package postgres

import (
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	M "funnelcast/model"
)

// Store reads the merged snapshot and target table and persists the two
// output tables.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetFunnelRecords() ([]M.FunnelRecord, error) {
	var records []M.FunnelRecord
	if err := s.db.Find(&records).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch funnel records")
	}
	return records, nil
}

func (s *Store) GetForecastTargets() ([]M.ForecastTarget, error) {
	var targets []M.ForecastTarget
	if err := s.db.Find(&targets).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch forecast targets")
	}
	return targets, nil
}

type activeOwner struct {
	OwnerID string `gorm:"column:owner_id"`
}

func (activeOwner) TableName() string {
	return "active_owners"
}

func (s *Store) GetActiveOwners() (map[string]bool, error) {
	var rows []activeOwner
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch active owners")
	}

	owners := make(map[string]bool, len(rows))
	for _, row := range rows {
		owners[row.OwnerID] = true
	}
	return owners, nil
}

// ReplaceForecastTargets refreshes the target table from an ingested
// workbook. Duplicate rows are stored as-is; summation is a read-side policy.
func (s *Store) ReplaceForecastTargets(targets []M.ForecastTarget) error {
	return s.replaceTable(M.ForecastTarget{}.TableName(), func(tx *gorm.DB) error {
		for i := range targets {
			if err := tx.Create(&targets[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplacePointForecasts swaps the point forecast table in one transaction.
func (s *Store) ReplacePointForecasts(points []M.PointForecast) error {
	return s.replaceTable(M.PointForecast{}.TableName(), func(tx *gorm.DB) error {
		for i := range points {
			if err := tx.Create(&points[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceDailyProjections swaps the daily projection table in one transaction.
func (s *Store) ReplaceDailyProjections(rows []M.DailyProjection) error {
	return s.replaceTable(M.DailyProjection{}.TableName(), func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Create(&rows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) replaceTable(table string, insert func(tx *gorm.DB) error) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "failed to begin transaction")
	}

	if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to clear table %s", table)
	}
	if err := insert(tx); err != nil {
		tx.Rollback()
		return errors.Wrapf(err, "failed to insert into table %s", table)
	}
	if err := tx.Commit().Error; err != nil {
		return errors.Wrapf(err, "failed to commit table %s", table)
	}

	log.WithField("table", table).Debug("Replaced output table.")
	return nil
}

func (s *Store) GetPointForecasts() ([]M.PointForecast, error) {
	var points []M.PointForecast
	if err := s.db.Order("channel, source, stage").Find(&points).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch point forecasts")
	}
	return points, nil
}

func (s *Store) GetDailyProjections() ([]M.DailyProjection, error) {
	var rows []M.DailyProjection
	if err := s.db.Order("channel, source, stage, date").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch daily projections")
	}
	return rows, nil
}
