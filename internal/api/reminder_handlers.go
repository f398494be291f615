package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iglide21/BabyBuddy-sub001/internal/service"
)

func PostReminder(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.ReminderRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		reminder, err := service.CreateReminder(c.Request.Context(), app.Store(), baby.ID, &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to save reminder")
			return
		}
		app.Metrics().EventRecorded("reminder")
		HandleCreated(c, app.Logger(), reminder)
	}
}

// ListReminders returns every reminder, newest first, or with
// ?pending=true only the open ones, soonest first.
func ListReminders(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		reminders, err := app.Store().ListReminders(c.Request.Context(), baby.ID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch reminders")
			return
		}
		if pending, _ := strconv.ParseBool(c.Query("pending")); pending {
			reminders = service.PendingReminders(reminders)
		}
		HandleSuccess(c, app.Logger(), reminders, map[string]any{"count": len(reminders)})
	}
}

func PutReminder(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)

		var body service.ReminderRequest
		if !bindJSON(c, app.Logger(), &body) {
			return
		}

		reminder, err := service.UpdateReminder(c.Request.Context(), app.Store(), baby.ID, c.Param("id"), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update reminder")
			return
		}
		HandleSuccess(c, app.Logger(), reminder, nil)
	}
}

func DeleteReminder(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		baby := currentBaby(c)
		id := c.Param("id")
		if err := app.Store().DeleteReminder(c.Request.Context(), baby.ID, id); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete reminder")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"id": id}, nil)
	}
}
