package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/auth"
	"glownexa-backend/internal/shared/server/respond"
)

const (
	userIDKey        = "userId"
	userEmailKey     = "userEmail"
	userNameKey      = "userName"
	emailVerifiedKey = "emailVerified"
)

// AuthOptions tunes the Auth middleware.
type AuthOptions struct {
	// RequireVerified rejects callers whose email is not verified yet.
	RequireVerified bool
}

// Auth validates bearer ID tokens and stores the caller identity in context.
func Auth(verifier auth.Verifier, opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		id, err := verifier.VerifyIDToken(c.Request.Context(), token)
		if err != nil || id.UID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(userIDKey, id.UID)
		c.Set(emailVerifiedKey, id.EmailVerified)
		if id.Email != "" {
			c.Set(userEmailKey, id.Email)
		}
		if id.Name != "" {
			c.Set(userNameKey, id.Name)
		}

		if opts.RequireVerified && !id.EmailVerified {
			respond.Error(c, http.StatusForbidden, "email_not_verified", "Please verify your email before continuing.", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the display name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// EmailVerifiedFromContext reports whether the caller's email is verified.
func EmailVerifiedFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(emailVerifiedKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
