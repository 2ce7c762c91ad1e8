package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sherajsharif/crop-disease-Api/internal/metrics"
)

const unmatchedPath = "unmatched"

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		metrics.RequestCount.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

func recoverer(logger *zap.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, err any) {
		logger.Error("panic recovered", zap.Any("panic", err), zap.String("path", c.Request.URL.Path))
		abort(c, http.StatusInternalServerError, "Internal server error")
	}
}
