package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/metrics"
)

// Metrics records request counts and latencies per route template, so
// /vendors/:id is one series no matter how many vendors exist.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
