package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/iglide21/BabyBuddy-sub001/internal/auth"
	"github.com/iglide21/BabyBuddy-sub001/internal/config"
)

// NewRouter registers every route. Everything under /api needs a bearer
// token, and everything under /api/babies/:babyId needs the caller to own
// that baby.
func NewRouter(app App, provider auth.Provider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(app.Logger()), MetricsMiddleware(app.Metrics()))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(app.Metrics().Handler()))

	protected := r.Group("/api")
	protected.Use(auth.AuthMiddleware(provider, app.Metrics().AuthFailed))
	protected.POST("/babies", PostBaby(app))
	protected.GET("/babies", ListBabies(app))

	baby := protected.Group("/babies/:babyId")
	baby.Use(BabyOwnershipMiddleware(app))
	baby.GET("", GetBaby(app))
	baby.PATCH("", PatchBaby(app))
	baby.DELETE("", DeleteBaby(app))
	baby.GET("/history", ListProfileHistory(app))

	baby.POST("/feedings", PostFeeding(app))
	baby.GET("/feedings", ListFeedings(app))
	baby.GET("/feedings/:id", GetFeeding(app))
	baby.PUT("/feedings/:id", PutFeeding(app))
	baby.DELETE("/feedings/:id", DeleteFeeding(app))

	baby.POST("/sleeps", PostSleep(app))
	baby.GET("/sleeps", ListSleeps(app))
	baby.GET("/sleeps/:id", GetSleep(app))
	baby.PUT("/sleeps/:id", PutSleep(app))
	baby.DELETE("/sleeps/:id", DeleteSleep(app))

	baby.POST("/diapers", PostDiaper(app))
	baby.GET("/diapers", ListDiapers(app))
	baby.GET("/diapers/:id", GetDiaper(app))
	baby.PUT("/diapers/:id", PutDiaper(app))
	baby.DELETE("/diapers/:id", DeleteDiaper(app))

	baby.POST("/reminders", PostReminder(app))
	baby.GET("/reminders", ListReminders(app))
	baby.PUT("/reminders/:id", PutReminder(app))
	baby.DELETE("/reminders/:id", DeleteReminder(app))

	baby.POST("/measurements", PostMeasurement(app))
	baby.GET("/measurements", ListMeasurements(app))
	baby.DELETE("/measurements/:id", DeleteMeasurement(app))

	baby.GET("/summary", GetSummary(app))
	baby.GET("/export", GetExport(app))

	return r
}

// NewServer wraps handler in the CORS policy for cfg.CORSOrigins.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
	})
	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      c.Handler(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
