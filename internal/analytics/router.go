package analytics

import (
	"github.com/gin-gonic/gin"

	"praycalendar/internal/shared/config"
	"praycalendar/internal/shared/middleware"
)

// SetupAnalyticsRoutes mounts the admin-only stats and cache management
// endpoints.
func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	admin := rg.Group("/admin")
	admin.Use(middleware.JWTAuth(cfg))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/stats", controller.GetStats)
		admin.DELETE("/cache", controller.PurgeCache)
	}
}
