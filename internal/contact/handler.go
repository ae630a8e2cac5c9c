package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/server/respond"
	"glownexa-backend/internal/shared/telemetry"
)

// Handler exposes the contact form endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches POST /contact behind the given middleware (usually the limiter).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.submit)
	rg.POST("/contact", handlers...)
}

func (h *Handler) submit(c *gin.Context) {
	var req Request
	// An unreadable body is reported the same way as missing fields.
	_ = c.ShouldBindJSON(&req)

	err := h.Svc.Submit(c.Request.Context(), req)
	switch {
	case err == nil:
		respond.Success(c, http.StatusOK, gin.H{"message": "Email sent"})
	case errors.Is(err, ErrMissingFields):
		respond.Failure(c, http.StatusBadRequest, "", "Missing required fields")
	default:
		telemetry.Error("mail.send.failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err,
		})
		respond.Failure(c, http.StatusInternalServerError, "", "Failed to send email")
	}
}
