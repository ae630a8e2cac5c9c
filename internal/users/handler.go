package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	user, err := h.Svc.EnsureFromIdentity(c.Request.Context(), userID,
		middleware.UserEmailFromContext(c), middleware.UserNameFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"uid":           user.UID,
		"username":      user.Username,
		"email":         user.Email,
		"createdAt":     user.CreatedAt,
		"emailVerified": middleware.EmailVerifiedFromContext(c),
	})
}
