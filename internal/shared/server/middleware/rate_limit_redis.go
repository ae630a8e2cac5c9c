package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowStore shares fixed windows across API replicas.
type RedisWindowStore struct {
	Client redis.Cmdable
	Prefix string
	now    func() time.Time
}

// NewRedisWindowStore constructs a RedisWindowStore. now may be nil.
func NewRedisWindowStore(client redis.Cmdable, prefix string, now func() time.Time) *RedisWindowStore {
	if now == nil {
		now = time.Now
	}
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisWindowStore{Client: client, Prefix: prefix, now: now}
}

// Hit increments the window counter, setting its expiry on the first hit.
func (s *RedisWindowStore) Hit(ctx context.Context, key string, w Window) (Hit, error) {
	k := s.Prefix + key
	count, err := s.Client.Incr(ctx, k).Result()
	if err != nil {
		return Hit{}, fmt.Errorf("incr %s: %w", k, err)
	}
	if count == 1 {
		if err := s.Client.PExpire(ctx, k, w.Period).Err(); err != nil {
			return Hit{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
	}
	ttl, err := s.Client.PTTL(ctx, k).Result()
	if err != nil {
		return Hit{}, fmt.Errorf("pttl %s: %w", k, err)
	}
	if ttl < 0 {
		// Key lost its expiry; restart the window.
		if err := s.Client.PExpire(ctx, k, w.Period).Err(); err != nil {
			return Hit{}, fmt.Errorf("pexpire %s: %w", k, err)
		}
		ttl = w.Period
	}
	return Hit{Count: int(count), ResetAt: s.now().Add(ttl)}, nil
}
