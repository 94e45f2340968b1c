package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		entry := log.WithFields(log.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"bytes_in":   c.Request.ContentLength,
			"request_id": c.GetString(ContextRequestID),
		})
		// Health probes are polled constantly by the host.
		if c.Request.URL.Path == "/ping" || c.Request.URL.Path == "/healthz" {
			entry.Debug("request completed")
			return
		}
		entry.Info("request completed")
	}
}
