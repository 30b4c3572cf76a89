package controllers

import (
	"errors"
	"net/http"

	"tunnel-dashboard/internal/config"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIController struct {
	server *services.Server
}

/**
 * Create new API controller instance
 * @param {*services.Server} server - Dashboard session
 * @returns {*APIController} New API controller instance
 */
func NewAPIController(server *services.Server) *APIController {
	return &APIController{
		server: server,
	}
}

/**
 * Register all API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 * @description
 * - Registers routes for:
 *   - Live table view and on-demand refresh
 *   - Active notifications
 *   - Config reload, readiness and Prometheus metrics
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/v1/view", a.View)
	r.GET("/api/v1/notifications", a.Notifications)
	r.POST("/api/v1/refresh", a.Refresh)
	r.POST("/api/v1/reload", a.ReloadConfig)
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// @Summary 获取当前表格
// @Description 返回仪表盘当前持有的隧道表格
// @Tags View
// @Produce json
// @Success 200 {object} models.TableView
// @Router /api/v1/view [get]
func (a *APIController) View(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.Store().Snapshot())
}

// @Summary 获取未过期的通知
// @Tags View
// @Produce json
// @Success 200 {array} models.Notification
// @Router /api/v1/notifications [get]
func (a *APIController) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.Notifier().Active())
}

// @Summary 立即刷新隧道状态
// @Description 拉取完整的隧道列表并重建表格；已有刷新进行中时返回409
// @Tags View
// @Produce json
// @Success 200 {object} models.TableView
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/refresh [post]
func (a *APIController) Refresh(c *gin.Context) {
	err := a.server.Poller().RefreshStatus(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, a.server.Store().Snapshot())
	case errors.Is(err, services.ErrRefreshInFlight):
		c.JSON(http.StatusConflict, &models.ErrorResponse{
			Code:  "view.refresh_in_flight",
			Error: err.Error(),
		})
	case errors.Is(err, services.ErrViewClosed):
		c.JSON(http.StatusServiceUnavailable, &models.ErrorResponse{
			Code:  "view.closed",
			Error: err.Error(),
		})
	default:
		c.JSON(http.StatusBadGateway, &models.ErrorResponse{
			Code:  "view.refresh_failed",
			Error: err.Error(),
		})
	}
}

// @Summary 重新加载配置
// @Description 重新加载应用配置文件，轮询周期需重启后生效
// @Tags Config
// @Success 200 {object} models.CommandResult
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/reload [post]
func (a *APIController) ReloadConfig(c *gin.Context) {
	if err := config.ReloadConfig(); err != nil {
		c.JSON(http.StatusInternalServerError, &models.ErrorResponse{
			Code:  "config.reload_failed",
			Error: "Failed to reload configuration: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, &models.CommandResult{
		Status:  "success",
		Message: "Configuration reloaded successfully",
	})
}

// @Summary 业务就绪探针
// @Description 返回仪表盘版本、启动时间、健康状态和关键指标统计结果
// @Tags System
// @Produce json
// @Success 200 {object} models.DashboardHealth
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, a.server.GetHealthz())
}
