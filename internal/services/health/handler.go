package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/metrics"
	"glownexa-backend/internal/shared/server/respond"
)

// Handler exposes liveness, readiness and metrics.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches /healthz, /readyz and /metrics.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/healthz", func(c *gin.Context) {
		respond.OK(c, h.Svc.Status())
	})
	r.GET("/readyz", h.ready)
	r.GET("/metrics", metrics.Handler())
}

func (h *Handler) ready(c *gin.Context) {
	ok, checks := h.Svc.Ready(c.Request.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
}
