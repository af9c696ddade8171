package middleware

import (
	"github.com/fitcoach/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request count, latency and in-flight requests per
// matched route. A nil recorder disables the middleware.
func HTTPMetrics(m *telemetry.HTTPMetrics, skipPaths ...string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		done := m.Start(c.Request.Context(), c.Request.Method)
		c.Next()
		// FullPath is empty for unmatched routes, keeping cardinality bounded
		done(c.FullPath(), c.Writer.Status())
	}
}
