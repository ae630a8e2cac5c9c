package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/metrics"
	"glownexa-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.ObserveHTTPRequest(status)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if userID := UserIDFromContext(c); userID != "" {
			fields["user_id"] = userID
		}
		if analysisID := c.GetString("analysisId"); analysisID != "" {
			fields["analysis_id"] = analysisID
		}
		telemetry.Info("request.complete", fields)
	}
}
