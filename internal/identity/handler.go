package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/server/respond"
)

// LimitFunc builds a rate limiting middleware that rejects with onLimit.
type LimitFunc func(name string, onLimit func(c *gin.Context, retryAfter time.Duration)) gin.HandlerFunc

// Handler exposes the account endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the public account routes. limit may be nil.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit LimitFunc) {
	rg.POST("/register", withLimit(limit, "register", FlowRegister, h.register)...)
	rg.POST("/forgot-password", withLimit(limit, "forgot-password", FlowForgot, h.forgotPassword)...)
	rg.GET("/messages/:flow", h.messages)
}

// RegisterProtectedRoutes attaches routes that need a signed-in, possibly unverified, user.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/resend-verification", h.resendVerification)
}

func withLimit(limit LimitFunc, name string, flow Flow, h gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limit(name, tooManyRequests(flow)), h}
}

func tooManyRequests(flow Flow) func(*gin.Context, time.Duration) {
	msgFlow := flow
	if flow != FlowLogin {
		msgFlow = FlowForgot
	}
	return func(c *gin.Context, _ time.Duration) {
		respond.Failure(c, http.StatusTooManyRequests, CodeTooManyRequests, Message(msgFlow, CodeTooManyRequests, ""))
	}
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Failure(c, http.StatusBadRequest, CodeMissingFields, "All fields are required")
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		writeFlowError(c, FlowRegister, err)
		return
	}
	c.Set("userId", res.UID)
	message := "Registration successful! Please check your email to verify your account."
	if !res.VerificationSent {
		message = "Registration successful! We could not send the verification email, please request a new one after logging in."
	}
	respond.Success(c, http.StatusCreated, gin.H{
		"uid":              res.UID,
		"verificationSent": res.VerificationSent,
		"message":          message,
	})
}

type forgotRequest struct {
	Email string `json:"email"`
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		writeFlowError(c, FlowForgot, err)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"message": ResetSentMessage})
}

func (h *Handler) resendVerification(c *gin.Context) {
	if middleware.UserIDFromContext(c) == "" {
		respond.Failure(c, http.StatusUnauthorized, "unauthorized", "login required")
		return
	}
	if middleware.EmailVerifiedFromContext(c) {
		respond.Success(c, http.StatusOK, gin.H{"message": "Email already verified", "alreadyVerified": true})
		return
	}
	err := h.Svc.ResendVerification(c.Request.Context(), middleware.UserEmailFromContext(c), middleware.UserNameFromContext(c))
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, CodeOf(err), VerificationFailedMessage)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"message": VerificationSentMessage})
}

func (h *Handler) messages(c *gin.Context) {
	flow := Flow(c.Param("flow"))
	table, ok := Messages(flow)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "unknown flow", nil)
		return
	}
	body := gin.H{"flow": flow, "messages": table}
	if flow == FlowLogin {
		body["unverified"] = UnverifiedLoginMessage
	}
	if flow == FlowRegister {
		body["passwordRequirements"] = PasswordRequirementsMessage
	}
	respond.OK(c, body)
}

func writeFlowError(c *gin.Context, flow Flow, err error) {
	var pwErr *PasswordError
	if errors.As(err, &pwErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":      false,
			"code":         CodeWeakPassword,
			"error":        PasswordRequirementsMessage,
			"requirements": pwErr.Requirements,
		})
		return
	}
	var idErr *Error
	if errors.As(err, &idErr) {
		respond.Failure(c, statusForCode(idErr.Code), idErr.Code, Message(flow, idErr.Code, idErr.Msg))
		return
	}
	respond.Failure(c, http.StatusInternalServerError, "", Message(flow, "", ""))
}

func statusForCode(code string) int {
	switch code {
	case CodeEmailInUse:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUserNotFound:
		return http.StatusNotFound
	case CodeWrongPassword, CodeInvalidCredential:
		return http.StatusUnauthorized
	case CodeUserDisabled:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
