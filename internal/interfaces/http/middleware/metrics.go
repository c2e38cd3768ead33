package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency by route template, so
// /screenings/:id stays one series. Unmatched routes share "unmatched".
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prometheus.RecordHTTPRequest(m, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

//Personal.AI order the ending
