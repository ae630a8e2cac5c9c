package identity

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/server/respond"
)

// DevHandler serves the sign-in and emailed-link routes the local JWT
// provider needs in place of the hosted Firebase pages.
type DevHandler struct {
	Provider *JWTProvider
	// ContinueOrigins lists the scheme://host values /action/verify may redirect to.
	ContinueOrigins []string
}

// RegisterRoutes attaches /dev/login and the /action link targets.
func (h *DevHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/dev/login", h.login)
	rg.GET("/action/verify", h.verify)
	rg.POST("/action/reset", h.reset)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *DevHandler) login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req)
	if validate.Var(req.Email, "required,email") != nil {
		respond.Failure(c, http.StatusBadRequest, CodeInvalidEmail, Message(FlowLogin, CodeInvalidEmail, ""))
		return
	}
	token, err := h.Provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		code := CodeOf(err)
		respond.Failure(c, statusForCode(code), code, Message(FlowLogin, code, ""))
		return
	}
	id, err := h.Provider.VerifyIDToken(c.Request.Context(), token)
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, "", Message(FlowLogin, "", ""))
		return
	}
	if !id.EmailVerified {
		respond.Failure(c, http.StatusForbidden, "email-not-verified", UnverifiedLoginMessage)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"idToken": token, "uid": id.UID})
}

func (h *DevHandler) verify(c *gin.Context) {
	if err := h.Provider.ApplyVerification(c.Request.Context(), c.Query("oobCode")); err != nil {
		respond.Failure(c, http.StatusBadRequest, CodeOf(err), "This verification link is invalid or has expired.")
		return
	}
	if next, ok := h.continueTarget(c.Query("continueUrl")); ok {
		c.Redirect(http.StatusFound, next)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"message": "Email verified"})
}

func (h *DevHandler) continueTarget(raw string) (string, bool) {
	origin := Origin(raw)
	if origin == "" {
		return "", false
	}
	for _, allowed := range h.ContinueOrigins {
		if strings.EqualFold(Origin(allowed), origin) {
			return raw, true
		}
	}
	return "", false
}

// Origin returns the scheme://host of an absolute http(s) URL, or "" otherwise.
func Origin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return ""
	}
	return scheme + "://" + strings.ToLower(u.Host)
}

type resetRequest struct {
	OOBCode  string `json:"oobCode"`
	Password string `json:"password"`
}

func (h *DevHandler) reset(c *gin.Context) {
	var req resetRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.Provider.ResetPassword(c.Request.Context(), req.OOBCode, req.Password); err != nil {
		code := CodeOf(err)
		msg := "This reset link is invalid or has expired."
		if code == CodeWeakPassword {
			msg = PasswordRequirementsMessage
		}
		respond.Failure(c, http.StatusBadRequest, code, msg)
		return
	}
	respond.Success(c, http.StatusOK, gin.H{"message": "Password updated"})
}
