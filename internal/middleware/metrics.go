package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-roster/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes every request under its route template so /students/:id
// stays one series however many students exist. Requests to the routes named
// in skip, such as the scrape endpoint itself, are not counted. Paths with
// no route share the "unmatched" label.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if slices.Contains(skip, route) {
			return
		}
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
