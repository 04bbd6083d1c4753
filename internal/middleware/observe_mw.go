package middleware

import (
	"strconv"
	"time"

	"user_manager/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetricsMiddleware records request counts, durations and in-flight gauge.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()

		c.Next()

		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RequestLogger logs one line per request with the zap global logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		zap.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
