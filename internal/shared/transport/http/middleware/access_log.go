package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"BatallaMedieval/internal/shared/logs"
)

// AccessLog 统一访问日志。业务码在响应体里，这里只记传输层信息。
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if uid, ok := UIDFromContext(c); ok {
			fields = append(fields, zap.Int64("uid", uid))
		}
		logs.Info("access", fields...)
	}
}
