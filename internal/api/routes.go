package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/hamster-timesheets/internal/logger"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler, log *logger.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger(log))

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		timesheets := v1.Group("/timesheets")
		{
			timesheets.GET("/preview", handler.PreviewTimesheet)
			timesheets.POST("/submit", handler.SubmitTimesheet)
		}

		batches := v1.Group("/batches")
		{
			batches.GET("", handler.ListBatches)
			batches.GET("/:id", handler.GetBatch)
		}
	}

	return router
}
