package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/adaptiveops/optimizer-backend-go/internal/api/handlers"
	"github.com/adaptiveops/optimizer-backend-go/internal/api/middleware"
	"github.com/adaptiveops/optimizer-backend-go/internal/config"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/alerts"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/optimizer"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/tunables"
	"github.com/adaptiveops/optimizer-backend-go/internal/websocket"
)

// NewRouter creates and configures the main HTTP router
func NewRouter(cfg *config.Config, logger *logrus.Logger, loop *optimizer.Loop, store tunables.Store, alertManager *alerts.Manager, wsHub *websocket.Hub) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.ErrorMappingMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware())

	h := handlers.NewHandlers(cfg, logger, loop, store, alertManager, wsHub)

	// Public routes
	router.GET("/health", h.Health)

	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// WebSocket endpoint
	router.GET("/ws", h.WebSocketHandler(wsHub))

	// API v1 routes
	api := router.Group("/api/v1")
	{
		api.GET("/status", h.GetStatus)
		api.GET("/analytics", h.GetAnalytics)

		loop := api.Group("/loop")
		{
			loop.POST("/start", h.StartLoop)
			loop.POST("/stop", h.StopLoop)
		}

		history := api.Group("/history")
		{
			history.GET("/snapshots", h.GetSnapshots)
			history.GET("/actions", h.GetActions)
			history.GET("/export", h.ExportHistory)
		}

		params := api.Group("/tunables")
		{
			params.GET("/", h.GetTunables)
			params.GET("/:name", h.GetTunable)
			params.PUT("/:name", h.SetTunable)
		}

		api.GET("/adjustments", h.GetAdjustments)

		alertRoutes := api.Group("/alerts")
		{
			alertRoutes.GET("/", h.GetAlerts)
			alertRoutes.POST("/:id/resolve", h.ResolveAlert)
		}
	}

	return router
}
