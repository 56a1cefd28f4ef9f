package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/config"
	"backend/internal/logger"
	"backend/internal/middleware"
)

// RequestLogger 请求日志中间件
// 日志级别跟随响应状态：5xx 记 error，4xx 记 warn，其余 info
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetRequestIDFromGin(c)),
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP 请求异常", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP 请求失败", fields...)
		default:
			logger.Info("HTTP 请求", fields...)
		}
	}
}

var (
	defaultCORSHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization",
		"Accept", "Origin", "Cache-Control", "X-Requested-With",
	}
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
)

// CORS 跨域中间件，来源白名单取自配置
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	headers := strings.Join(defaultIfEmpty(cfg.AllowedHeaders, defaultCORSHeaders), ", ")
	methods := strings.Join(defaultIfEmpty(cfg.AllowedMethods, defaultCORSMethods), ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(cfg.AllowedOrigins) == 0:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && stringInSlice(origin, cfg.AllowedOrigins):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", headers)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methods)
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
