package api

import (
	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/auth"
	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

func PostBaby(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var body service.BabyRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		baby, err := service.CreateBaby(c.Request.Context(), app.Store(), user, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save baby")
			return
		}
		HandleCreated(c, app.Logger(), baby)
	}
}

func ListBabies(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		babies, err := app.Store().ListBabies(c.Request.Context(), user.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch babies")
			return
		}
		HandleSuccess(c, app.Logger(), babies, map[string]any{"count": len(babies)})
	}
}

func GetBaby(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), currentBaby(c), nil)
	}
}

// PatchBaby applies a partial profile update and journals the replaced
// values in the same transaction.
func PatchBaby(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.ProfileUpdateRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		updated, history, err := service.UpdateBabyProfile(c.Request.Context(), app.Store(), app.Reconciler(), baby.ID, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update baby")
			return
		}
		app.Metrics().ProfileUpdated(history != nil)
		HandleSuccess(c, app.Logger(), updated, map[string]any{"history": history})
	}
}

func DeleteBaby(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		if err := app.Store().DeleteBaby(c.Request.Context(), baby.ID); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete baby")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": baby.ID}, nil)
	}
}

func ListProfileHistory(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		history, err := app.Store().ListProfileHistory(c.Request.Context(), baby.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch history")
			return
		}
		if history == nil {
			history = []internal.BabyProfileHistory{}
		}
		HandleSuccess(c, app.Logger(), history, nil)
	}
}
