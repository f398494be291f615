package api

import (
	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

func PostMeasurement(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.MeasurementRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		m, err := service.CreateMeasurement(c.Request.Context(), app.Store(), baby.ID, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save measurement")
			return
		}
		app.Metrics().EventRecorded("measurement")
		HandleCreated(c, app.Logger(), m)
	}
}

func ListMeasurements(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		ms, err := app.Store().ListMeasurements(c.Request.Context(), baby.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch measurements")
			return
		}
		HandleSuccess(c, app.Logger(), ms, map[string]any{"count": len(ms)})
	}
}

func DeleteMeasurement(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		id := c.Param("id")
		if err := app.Store().DeleteMeasurement(c.Request.Context(), baby.ID, id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete measurement")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": id}, nil)
	}
}
