package api

import (
	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

func PostFeeding(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.FeedingRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		feeding, err := service.CreateFeeding(c.Request.Context(), app.Store(), baby.ID, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save feeding")
			return
		}
		app.Metrics().EventRecorded("feeding")
		HandleCreated(c, app.Logger(), feeding)
	}
}

func ListFeedings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		feedings, err := app.Store().ListFeedings(c.Request.Context(), baby.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch feedings")
			return
		}
		HandleSuccess(c, app.Logger(), feedings, map[string]any{"count": len(feedings)})
	}
}

func GetFeeding(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		feeding, err := app.Store().GetFeeding(c.Request.Context(), baby.ID, c.Param("id"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch feeding")
			return
		}
		HandleSuccess(c, app.Logger(), feeding, nil)
	}
}

// PutFeeding amends a feeding; the duration is resolved again from the body.
func PutFeeding(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.FeedingRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		feeding, err := service.UpdateFeeding(c.Request.Context(), app.Store(), baby.ID, c.Param("id"), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update feeding")
			return
		}
		HandleSuccess(c, app.Logger(), feeding, nil)
	}
}

func DeleteFeeding(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		id := c.Param("id")
		if err := app.Store().DeleteFeeding(c.Request.Context(), baby.ID, id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete feeding")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": id}, nil)
	}
}
