package api

import (
	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

func PostSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.SleepRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}
		app.Logger().Debugf("Parsed SleepRequest: %+v", body)

		sleep, err := service.CreateSleep(c.Request.Context(), app.Store(), baby.ID, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save sleep")
			return
		}
		app.Metrics().EventRecorded("sleep")
		HandleCreated(c, app.Logger(), sleep)
	}
}

func ListSleeps(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		sleeps, err := app.Store().ListSleeps(c.Request.Context(), baby.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch sleeps")
			return
		}
		HandleSuccess(c, app.Logger(), sleeps, map[string]any{"count": len(sleeps)})
	}
}

func GetSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		sleep, err := app.Store().GetSleep(c.Request.Context(), baby.ID, c.Param("id"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch sleep")
			return
		}
		HandleSuccess(c, app.Logger(), sleep, nil)
	}
}

func PutSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.SleepRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		sleep, err := service.UpdateSleep(c.Request.Context(), app.Store(), baby.ID, c.Param("id"), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update sleep")
			return
		}
		HandleSuccess(c, app.Logger(), sleep, nil)
	}
}

func DeleteSleep(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		id := c.Param("id")
		if err := app.Store().DeleteSleep(c.Request.Context(), baby.ID, id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete sleep")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": id}, nil)
	}
}
