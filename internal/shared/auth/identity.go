package auth

import "context"

// Identity is the authenticated caller extracted from an ID token.
type Identity struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
}

// Verifier validates bearer ID tokens.
type Verifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (Identity, error)
}
