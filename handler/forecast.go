package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	M "funnelcast/model"
	"funnelcast/store"
)

// SetupRoutes registers the read-only results endpoints. The visualization
// layer pulls the latest run's tables from here; nothing is writable over
// HTTP.
func SetupRoutes(r *gin.Engine, s store.Store) {
	r.GET("/forecast/point", getPointForecasts(s))
	r.GET("/forecast/daily", getDailyProjections(s))
}

// curl http://localhost:8080/forecast/point?channel=paid&source=google
func getPointForecasts(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		points, err := s.GetPointForecasts()
		if err != nil {
			log.WithError(err).Error("Failed to fetch point forecasts.")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		filtered := make([]M.PointForecast, 0, len(points))
		for _, p := range points {
			if matchesFilter(c, p.Channel, p.Source, p.Stage) {
				filtered = append(filtered, p)
			}
		}
		c.JSON(http.StatusOK, filtered)
	}
}

// curl http://localhost:8080/forecast/daily?stage=sqo
func getDailyProjections(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := s.GetDailyProjections()
		if err != nil {
			log.WithError(err).Error("Failed to fetch daily projections.")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		filtered := make([]M.DailyProjection, 0, len(rows))
		for _, row := range rows {
			if matchesFilter(c, row.Channel, row.Source, row.Stage) {
				filtered = append(filtered, row)
			}
		}
		c.JSON(http.StatusOK, filtered)
	}
}

func matchesFilter(c *gin.Context, channel, source, stage string) bool {
	if v := c.Query("channel"); v != "" && v != channel {
		return false
	}
	if v := c.Query("source"); v != "" && v != source {
		return false
	}
	if v := c.Query("stage"); v != "" && v != stage {
		return false
	}
	return true
}
