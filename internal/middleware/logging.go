package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"milltrack/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging returns a Gin middleware that assigns each request a unique
// ID and logs method, path, status code, latency, and client IP using Zap.
// The request ID is echoed in the X-Request-ID header and reused by the
// audit trail to correlate log lines with audit records.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		log := logger.Get()
		log.Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// RequestID returns the request ID assigned by RequestLogging, or an empty
// string when the middleware did not run.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
