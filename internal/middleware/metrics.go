package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/politrack/politrack-api/internal/service"
)

// Metrics observes every request on the metrics service. Routes are labeled
// by their gin template (":cursoId" instead of the concrete id) so label
// cardinality stays bounded; the scrape endpoint itself is skipped.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
