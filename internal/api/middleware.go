package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/iglide21/BabyBuddy-sub001/internal"
	"github.com/iglide21/BabyBuddy-sub001/internal/auth"
	"github.com/iglide21/BabyBuddy-sub001/internal/metrics"
)

// BabyKey is the gin context key holding the *internal.Baby a route is
// scoped to.
const BabyKey = "baby"

// RequestIDMiddleware ensures every request has a correlation/request ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

// AccessLogMiddleware writes one line per request.
func AccessLogMiddleware(logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof("[request_id=%s] %s %s %d %s", c.GetString("request_id"),
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func MetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		collector.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// BabyOwnershipMiddleware loads :babyId and stops the request with 404
// unless it belongs to the authenticated user.
func BabyOwnershipMiddleware(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		babyID := c.Param("babyId")
		baby, err := app.Store().GetBaby(c.Request.Context(), babyID)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to load baby")
			return
		}
		if user == nil || baby.UserID != user.ID {
			HandleError(c, app.Logger(), fmt.Errorf("baby %s: %w", babyID, internal.ErrNotFound),
				http.StatusNotFound, "Not found")
			return
		}
		c.Set(BabyKey, baby)
		c.Next()
	}
}

func currentBaby(c *gin.Context) *internal.Baby {
	return c.MustGet(BabyKey).(*internal.Baby)
}
