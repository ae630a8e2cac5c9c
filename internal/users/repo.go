package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("user already exists")
)

type Repo interface {
	// Create stores a new profile; it fails with ErrExists when the uid is taken.
	Create(ctx context.Context, user User) error
	Get(ctx context.Context, uid string) (User, error)
}
