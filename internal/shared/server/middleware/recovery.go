package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/server/respond"
	"glownexa-backend/internal/shared/telemetry"
)

// Recovery turns a panic into a 500 in the envelope the route's clients read:
// the error object under /api/v1, the form envelope elsewhere under /api.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if usesFormEnvelope(c.Request.URL.Path) {
				respond.Failure(c, http.StatusInternalServerError, "internal_error", "Unexpected server error")
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
		}()
		c.Next()
	}
}

func usesFormEnvelope(path string) bool {
	return strings.HasPrefix(path, "/api/") && !strings.HasPrefix(path, "/api/v1/")
}
