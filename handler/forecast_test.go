package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	M "funnelcast/model"
	"funnelcast/store/memory"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	gin.SetMode(gin.TestMode)
	s := memory.NewStore()

	require.NoError(t, s.ReplacePointForecasts([]M.PointForecast{
		{Channel: "paid", Source: "google", Stage: M.StageJoined,
			ForecastValue: 430, ActualValue: 166, PredictedValue: 580, StddevDaily: 2},
		{Channel: "organic", Source: "referral", Stage: M.StageJoined,
			ForecastValue: 40},
	}))
	require.NoError(t, s.ReplaceDailyProjections([]M.DailyProjection{
		{Channel: "paid", Source: "google", Stage: M.StageJoined,
			Date: time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), Actual: 166,
			Predicted: 166, Lower: 166, Upper: 166, Target: 150},
		{Channel: "paid", Source: "google", Stage: M.StageSQO,
			Date: time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), Actual: 20,
			Predicted: 20, Lower: 20, Upper: 20, Target: 25},
	}))

	r := gin.New()
	SetupRoutes(r, s)
	return r, s
}

func doGet(t *testing.T, r *gin.Engine, url string, out interface{}) int {
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestGetPointForecasts(t *testing.T) {
	r, _ := setupTestRouter(t)

	var points []M.PointForecast
	code := doGet(t, r, "/forecast/point", &points)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, points, 2)
}

func TestGetPointForecastsFiltered(t *testing.T) {
	r, _ := setupTestRouter(t)

	var points []M.PointForecast
	code := doGet(t, r, "/forecast/point?channel=paid&source=google", &points)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, points, 1)
	assert.Equal(t, 580.0, points[0].PredictedValue)

	code = doGet(t, r, "/forecast/point?channel=unknown", &points)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, points)
}

func TestGetDailyProjectionsFiltered(t *testing.T) {
	r, _ := setupTestRouter(t)

	var rows []M.DailyProjection
	code := doGet(t, r, "/forecast/daily?stage=sqo", &rows)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, rows, 1)
	assert.Equal(t, 20.0, rows[0].Actual)
}
