package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	M "funnelcast/model"
)

func writeTargetWorkbook(t *testing.T, rows [][]interface{}) string {
	f := excelize.NewFile()
	f.NewSheet(TargetSheetName)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(TargetSheetName, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "targets.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadTargetsFromXLSX(t *testing.T) {
	path := writeTargetWorkbook(t, [][]interface{}{
		{"channel", "source", "stage", "month", "target"},
		{"paid", "google", "joined", "2025-07", "10"},
		{"paid", "google", "JOINED", "2025-08-01", "12"},
		// Duplicate row: kept as-is, summation is downstream policy.
		{"paid", "google", "joined", "2025-07", "5"},
	})

	targets, err := LoadTargetsFromXLSX(path)
	require.NoError(t, err)
	require.Len(t, targets, 3)

	assert.Equal(t, "paid", targets[0].Channel)
	assert.Equal(t, M.StageJoined, targets[0].Stage)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), targets[0].SubPeriodStart)
	assert.Equal(t, 10.0, targets[0].Target)

	assert.Equal(t, M.StageJoined, targets[1].Stage)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), targets[1].SubPeriodStart)

	assert.Equal(t, 5.0, targets[2].Target)
}

func TestLoadTargetsFromXLSXSkipsBadRows(t *testing.T) {
	path := writeTargetWorkbook(t, [][]interface{}{
		{"paid", "google", "joined", "2025-07", "10"},
		{"paid", "google", "won", "2025-07", "10"},
		{"paid", "google", "joined", "bad-month", "10"},
		{"paid", "google", "joined", "2025-07", "lots"},
		{"paid", "google", "joined"},
	})

	targets, err := LoadTargetsFromXLSX(path)
	require.NoError(t, err)
	assert.Len(t, targets, 1)
}

func TestLoadTargetsFromXLSXMissingFile(t *testing.T) {
	_, err := LoadTargetsFromXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
