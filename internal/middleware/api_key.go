package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pharmaledger/internal/errors"
)

var (
	errMetricsNotConfigured = &apperrors.AppError{Code: "METRICS_NOT_CONFIGURED", Message: "Metrics endpoint is not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidAPIKey        = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// APIKeyMiddleware guards machine endpoints such as /metrics with a static key
// sent in X-API-Key. An empty configured key disables the endpoint.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(errMetricsNotConfigured.StatusCode, ErrorBody(errMetricsNotConfigured))
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(errInvalidAPIKey.StatusCode, ErrorBody(errInvalidAPIKey))
			return
		}
		c.Next()
	}
}
