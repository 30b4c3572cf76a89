package middleware

import (
	"time"

	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP请求统计中间件
 * @description
 * - 统计HTTP服务器收到的请求数量
 * - 记录请求处理时间
 * - 区分成功和失败的请求
 * - 为健康检查接口提供请求数据
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		// 使用路由模板作为标签，避免路径参数导致标签爆炸
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}

		services.IncrementRequestCount(route)
		services.RecordRequestDuration(route, duration)
		if statusCode >= 400 {
			services.IncrementErrorCount(route)
		}
	}
}

// RequestLogger 以debug级别记录每个请求
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

/**
 * 获取总请求数
 * @returns {int64} 返回总请求数
 */
func GetTotalRequests() int64 {
	return services.GetTotalRequestCount()
}

/**
 * 获取错误请求数
 * @returns {int64} 返回错误请求数
 */
func GetErrorRequests() int64 {
	return services.GetTotalErrorCount()
}
