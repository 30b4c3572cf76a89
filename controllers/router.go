package controllers

import (
	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/middleware"
	"tunnel-dashboard/services"

	"github.com/gin-gonic/gin"
)

/**
 * Build the dashboard HTTP surface
 * @param {*services.Server} server - Dashboard session
 * @param {*config.AppConfig} cfg - Application configuration
 * @returns {*gin.Engine} Router with page, websocket, API and metrics routes
 */
func NewRouter(server *services.Server, cfg *config.AppConfig) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.MetricsMiddleware())

	NewAPIController(server).RegisterRoutes(router)
	NewTunnelController(server.Dispatcher()).RegisterRoutes(router)
	NewDashboardController(server, cfg.Notifications.TTL).RegisterRoutes(router)
	return router
}
