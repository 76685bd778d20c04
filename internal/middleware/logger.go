package middleware

import (
	"time"

	"github.com/epeers/bankruptcy/internal/metrics"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs each request once it has been served and records it in m.
// m may be nil.
func RequestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveRequest(c.Request.Method, route, status, elapsed)

		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"request_id": GetRequestID(c),
		})
		switch {
		case status >= 500:
			entry.Error("Request served")
		case status >= 400:
			entry.Warn("Request served")
		default:
			entry.Info("Request served")
		}
	}
}
