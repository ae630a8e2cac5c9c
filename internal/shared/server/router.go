package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/analyses"
	"glownexa-backend/internal/contact"
	"glownexa-backend/internal/identity"
	"glownexa-backend/internal/media"
	"glownexa-backend/internal/services/health"
	"glownexa-backend/internal/shared/auth"
	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/telemetry"
	"glownexa-backend/internal/users"
)

// RouterDeps carries the handlers and shared pieces NewRouter mounts.
// Nil handlers are skipped.
type RouterDeps struct {
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For; nil means ClientIP is the socket peer.
	TrustedProxies []string
	Verifier       auth.Verifier
	LimiterStore   middleware.WindowStore
	Limit          middleware.Window
	Now            func() time.Time

	Health      *health.Handler
	Contact     *contact.Handler
	Identity    *identity.Handler
	DevIdentity *identity.DevHandler
	Users       *users.Handler
	Analyses    *analyses.Handler
	Media       *media.Handler

	// LocalMediaDir is served under /media when images live on disk.
	LocalMediaDir string
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		telemetry.Error("router.trusted_proxies_invalid", map[string]any{"error": err})
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(deps.AllowedOrigins),
	)

	if deps.Health != nil {
		deps.Health.RegisterRoutes(r)
	}
	if deps.LocalMediaDir != "" {
		r.Group("/media", crossOriginResource).Static("/", deps.LocalMediaDir)
	}

	api := r.Group("/api")
	if deps.Contact != nil {
		deps.Contact.RegisterRoutes(api, deps.limiter("contact", nil))
	}

	authGroup := api.Group("/auth")
	if deps.Identity != nil {
		deps.Identity.RegisterRoutes(authGroup, func(name string, onLimit func(*gin.Context, time.Duration)) gin.HandlerFunc {
			return deps.limiter(name, onLimit)
		})
	}
	if deps.DevIdentity != nil {
		deps.DevIdentity.RegisterRoutes(authGroup)
	}

	if deps.Verifier == nil {
		return r
	}

	// Signed in, verification pending.
	v1 := api.Group("/v1", middleware.Auth(deps.Verifier, middleware.AuthOptions{}))
	if deps.Users != nil {
		deps.Users.RegisterRoutes(v1)
	}
	if deps.Identity != nil {
		deps.Identity.RegisterProtectedRoutes(v1)
	}

	verified := api.Group("/v1", middleware.Auth(deps.Verifier, middleware.AuthOptions{RequireVerified: true}))
	if deps.Analyses != nil {
		deps.Analyses.RegisterRoutes(verified)
	}
	if deps.Media != nil {
		deps.Media.RegisterRoutes(verified)
	}

	return r
}

func (deps RouterDeps) limiter(name string, onLimit func(*gin.Context, time.Duration)) gin.HandlerFunc {
	return middleware.RateLimit(middleware.RateLimitConfig{
		Name:    name,
		Window:  deps.Limit,
		Store:   deps.LimiterStore,
		OnLimit: onLimit,
		Now:     deps.Now,
	})
}

// crossOriginResource lets the SPA embed locally hosted images.
func crossOriginResource(c *gin.Context) {
	c.Header("Cross-Origin-Resource-Policy", "cross-origin")
	c.Next()
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":4000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
