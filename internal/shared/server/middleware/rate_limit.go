package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/metrics"
	"glownexa-backend/internal/shared/telemetry"
)

// TooManyRequestsMessage is the rejection text the contact form displays.
const TooManyRequestsMessage = "Too many requests, try again later."

// Window is a fixed-window rule: at most Limit hits per Period.
type Window struct {
	Limit  int
	Period time.Duration
}

// Hit is the state of a window after counting one request.
type Hit struct {
	Count   int
	ResetAt time.Time
}

// WindowStore counts hits per key within fixed windows.
type WindowStore interface {
	Hit(ctx context.Context, key string, w Window) (Hit, error)
}

// RateLimitConfig configures the RateLimit middleware.
type RateLimitConfig struct {
	Name    string
	Window  Window
	Store   WindowStore
	KeyFunc func(*gin.Context) string
	// OnLimit writes the rejection; the default writes the form envelope.
	OnLimit func(c *gin.Context, retryAfter time.Duration)
	Now     func() time.Time
}

// RateLimit rejects requests beyond cfg.Window per client key. Store errors
// let the request through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryWindowStore(cfg.Now)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = func(c *gin.Context, _ time.Duration) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   TooManyRequestsMessage,
			})
		}
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return func(c *gin.Context) {
		if cfg.Window.Limit <= 0 || cfg.Window.Period <= 0 {
			c.Next()
			return
		}
		key := strings.TrimSpace(cfg.KeyFunc(c))
		if key == "" {
			key = "anonymous"
		}
		hit, err := cfg.Store.Hit(c.Request.Context(), cfg.Name+"|"+key, cfg.Window)
		if err != nil {
			telemetry.Error("ratelimit.store_failed", map[string]any{
				"request_id": RequestIDFromContext(c),
				"limiter":    cfg.Name,
				"error":      err,
			})
			c.Next()
			return
		}

		retryAfter := hit.ResetAt.Sub(cfg.Now())
		if retryAfter < 0 {
			retryAfter = 0
		}
		resetSeconds := int(math.Ceil(retryAfter.Seconds()))
		remaining := cfg.Window.Limit - hit.Count
		if remaining < 0 {
			remaining = 0
		}
		h := c.Writer.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(cfg.Window.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(resetSeconds))

		if hit.Count <= cfg.Window.Limit {
			c.Next()
			return
		}
		if resetSeconds <= 0 {
			resetSeconds = 1
		}
		h.Set("Retry-After", strconv.Itoa(resetSeconds))
		metrics.IncRateLimited(cfg.Name)
		telemetry.Info("ratelimit.rejected", map[string]any{
			"request_id": RequestIDFromContext(c),
			"limiter":    cfg.Name,
			"client":     key,
			"count":      hit.Count,
		})
		cfg.OnLimit(c, retryAfter)
		c.Abort()
	}
}

// MemoryWindowStore keeps windows in process memory.
type MemoryWindowStore struct {
	mu      sync.Mutex
	windows map[string]*windowState
	now     func() time.Time
}

type windowState struct {
	count   int
	resetAt time.Time
}

// NewMemoryWindowStore constructs a MemoryWindowStore. now may be nil.
func NewMemoryWindowStore(now func() time.Time) *MemoryWindowStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryWindowStore{
		windows: make(map[string]*windowState),
		now:     now,
	}
}

// Hit counts one request for key, opening a new window when the previous one expired.
func (s *MemoryWindowStore) Hit(_ context.Context, key string, w Window) (Hit, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.windows[key]
	if !ok || !now.Before(state.resetAt) {
		state = &windowState{resetAt: now.Add(w.Period)}
		s.windows[key] = state
	}
	state.count++
	return Hit{Count: state.count, ResetAt: state.resetAt}, nil
}

// Prune drops expired windows and returns how many were removed.
func (s *MemoryWindowStore) Prune() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, state := range s.windows {
		if !now.Before(state.resetAt) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked windows.
func (s *MemoryWindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
