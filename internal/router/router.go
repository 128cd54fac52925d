package router

import (
	"github.com/gin-gonic/gin"

	"vpnvalidator/internal/handler"
	"vpnvalidator/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	healthH *handler.HealthHandler,
	validateH *handler.ValidateHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.POST("/validate", validateH.Validate)
	v1.POST("/validate/batch", validateH.ValidateBatch)

	return r
}
