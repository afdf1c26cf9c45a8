package middleware

import (
	"strconv"
	"time"

	"github.com/eastgroup/territory-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics creates a middleware that records request counts and latency for
// Prometheus. The route template is used as the path label so per-request
// values don't explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
