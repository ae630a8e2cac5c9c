package users

import (
	"context"
	"sync"
)

var _ Repo = (*MemoryRepo)(nil)

// MemoryRepo keeps profiles keyed by uid for dev builds and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]User)}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.profiles[user.UID]; taken {
		return ErrExists
	}
	r.profiles[user.UID] = user
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, uid string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	user, ok := r.profiles[uid]
	r.mu.RUnlock()
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}
