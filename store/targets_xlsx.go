package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	M "funnelcast/model"
	U "funnelcast/util"
)

// TargetSheetName is the expected sheet in a target workbook.
const TargetSheetName = "targets"

// LoadTargetsFromXLSX reads target rows from the goal-tracking spreadsheet.
// Expected columns: channel, source, stage, month (YYYY-MM or YYYY-MM-DD),
// target. A header row is skipped when present. Rows that fail to parse are
// skipped with a logged reason; duplicates are kept as-is, summation happens
// downstream.
func LoadTargetsFromXLSX(path string) ([]M.ForecastTarget, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open target workbook %s", path)
	}

	rows, err := f.GetRows(TargetSheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", TargetSheetName)
	}

	targets := make([]M.ForecastTarget, 0, len(rows))
	for i, row := range rows {
		logCtx := log.WithFields(log.Fields{"file": path, "row": i + 1})

		if len(row) < 5 {
			logCtx.Warn("Skipped target row with missing columns.")
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "channel") {
			continue
		}

		subPeriod, err := parseTargetMonth(row[3])
		if err != nil {
			logCtx.WithError(err).Warn("Skipped target row with bad month.")
			continue
		}
		target, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			logCtx.WithError(err).Warn("Skipped target row with bad target value.")
			continue
		}

		stage := strings.ToLower(strings.TrimSpace(row[2]))
		if M.StageIndex(stage) < 0 {
			logCtx.WithField("stage", row[2]).Warn("Skipped target row with unknown stage.")
			continue
		}

		targets = append(targets, M.ForecastTarget{
			Channel:        strings.TrimSpace(row[0]),
			Source:         strings.TrimSpace(row[1]),
			Stage:          stage,
			SubPeriodStart: subPeriod,
			Target:         target,
		})
	}
	return targets, nil
}

func parseTargetMonth(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if t, err := U.ParseDateZ(v); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01", v, time.UTC)
}
