package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"assetimport/internal/handler"
	"assetimport/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log *logrus.Entry,
	allowedOrigins []string,
	importH *handler.ImportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	imports := r.Group("/api/v1/imports")

	// Stored results
	results := imports.Group("/results")
	results.GET("/:id", importH.GetResult)
	results.GET("/:id/export", importH.Export)
	results.POST("/:id/archive", importH.Archive)
	results.DELETE("/:id", importH.DeleteResult)

	// Per-kind uploads and templates
	imports.GET("/:kind/template", importH.Template)
	imports.POST("/:kind", importH.Import)

	return r
}
