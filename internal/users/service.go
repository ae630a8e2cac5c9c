package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"glownexa-backend/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
	Now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Create stores the profile written at registration. CreatedAt defaults to now.
func (s *Service) Create(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user.UID = strings.TrimSpace(user.UID)
	user.Email = strings.TrimSpace(user.Email)
	user.Username = strings.TrimSpace(user.Username)
	if user.UID == "" || user.Email == "" {
		return User{}, errors.New("uid and email are required")
	}
	if user.CreatedAt == "" {
		user.CreatedAt = s.now().Format(time.RFC3339Nano)
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	telemetry.Info("user.created", map[string]any{"user_id": user.UID})
	return user, nil
}

func (s *Service) Get(ctx context.Context, uid string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(uid) == "" {
		return User{}, errors.New("uid is required")
	}
	return s.Repo.Get(ctx, uid)
}

// EnsureFromIdentity returns the stored profile, creating one from token claims if missing.
func (s *Service) EnsureFromIdentity(ctx context.Context, uid, email, name string) (User, error) {
	user, err := s.Get(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}
	username := strings.TrimSpace(name)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	user, err = s.Create(ctx, User{UID: uid, Username: username, Email: email})
	if errors.Is(err, ErrExists) {
		return s.Get(ctx, uid)
	}
	return user, err
}
