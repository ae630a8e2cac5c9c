package middleware

import (
	"context"
	"errors"

	"glownexa-backend/internal/shared/auth"
)

type stubVerifier struct {
	tokens map[string]auth.Identity
}

func (s stubVerifier) VerifyIDToken(_ context.Context, token string) (auth.Identity, error) {
	id, ok := s.tokens[token]
	if !ok {
		return auth.Identity{}, errors.New("bad token")
	}
	return id, nil
}
