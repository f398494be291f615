package api

import (
	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

func PostDiaper(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.DiaperRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		diaper, err := service.CreateDiaper(c.Request.Context(), app.Store(), baby.ID, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save diaper")
			return
		}
		app.Metrics().EventRecorded("diaper")
		HandleCreated(c, app.Logger(), diaper)
	}
}

func ListDiapers(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		diapers, err := app.Store().ListDiapers(c.Request.Context(), baby.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch diapers")
			return
		}
		HandleSuccess(c, app.Logger(), diapers, map[string]any{"count": len(diapers)})
	}
}

func GetDiaper(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		diaper, err := app.Store().GetDiaper(c.Request.Context(), baby.ID, c.Param("id"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch diaper")
			return
		}
		HandleSuccess(c, app.Logger(), diaper, nil)
	}
}

func PutDiaper(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.DiaperRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		diaper, err := service.UpdateDiaper(c.Request.Context(), app.Store(), baby.ID, c.Param("id"), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update diaper")
			return
		}
		HandleSuccess(c, app.Logger(), diaper, nil)
	}
}

func DeleteDiaper(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		id := c.Param("id")
		if err := app.Store().DeleteDiaper(c.Request.Context(), baby.ID, id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete diaper")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": id}, nil)
	}
}
