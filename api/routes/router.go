// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"praycalendar/internal/analytics"
	"praycalendar/internal/prayer"
	"praycalendar/internal/shared/config"
	"praycalendar/internal/shared/middleware"
	"praycalendar/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	store        *cache.Store
	cacheService cache.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, store *cache.Store, cacheService cache.Service) *Router {
	return &Router{
		config:       cfg,
		store:        store,
		cacheService: cacheService,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(middleware.RequestID())

	r.setupHealthRoutes(engine)

	analyticsService := analytics.NewService(r.cacheService, nil)
	calendarController := r.buildCalendarController(analyticsService)

	// The feed lives at the root so subscription URLs stay short enough to
	// paste into calendar clients; the same handlers are mirrored under the
	// versioned API prefix.
	prayer.SetupCalendarRoutes(&engine.RouterGroup, calendarController)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		prayer.SetupCalendarRoutes(api, calendarController)
		analytics.SetupAnalyticsRoutes(api, analytics.NewController(analyticsService), r.config)
	}
}

// setupHealthRoutes sets up health check and system status routes. A dead
// Redis degrades caching but never the service, so health stays 200 and
// reports the cache state instead.
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		cacheStatus := "connected"
		if err := r.cacheService.Ping(c.Request.Context()); err != nil {
			cacheStatus = "degraded"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"cache":     cacheStatus,
			"timestamp": time.Now(),
			"service":   "praycalendar",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"upstream":    r.config.Upstream.BaseURL,
			"timestamp":   time.Now(),
		})
	})
}

// buildCalendarController wires the prayer-time pipeline: fetcher behind the
// month cache behind the calendar controller.
func (r *Router) buildCalendarController(recorder prayer.UsageRecorder) prayer.Controller {
	fetcher := prayer.NewFetcher(r.config.Upstream, nil)
	monthCache := prayer.NewMonthCache(r.cacheService, r.config.Cache.MonthTTL, nil)
	service := prayer.NewService(monthCache, fetcher, nil)
	return prayer.NewController(service, r.cacheService, recorder, nil)
}
