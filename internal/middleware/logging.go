package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pharmaledger/internal/logger"
)

const (
	requestIDKey    = "requestID"
	userIDKey       = "userID"
	requestIDHeader = "X-Request-ID"
)

// RequestLogging logs each request with its request ID, method, route,
// status, latency, client IP and, once authenticated, the user ID. An
// incoming X-Request-ID is kept so traces line up with a proxy's logs.
func RequestLogging() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if uid := c.GetString(userIDKey); uid != "" {
			fields = append(fields, "user_id", uid)
		}

		switch {
		case status >= 500:
			log.Errorw("request", fields...)
		case status >= 400:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

// RequestID returns the request ID assigned by RequestLogging.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
