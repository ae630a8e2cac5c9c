package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity contained in a locally signed token.
type Claims struct {
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	// Purpose separates session tokens from action codes such as email verification.
	Purpose string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

const (
	PurposeSession     = "session"
	PurposeVerifyEmail = "verifyEmail"
	PurposeReset       = "resetPassword"
)

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Signer issues and verifies HS256 tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer for the given secret. An empty secret falls back
// to a fixed development key in the dev and test environments only.
func NewSigner(secret, env string, now func() time.Time) (*Signer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if env != "dev" && env != "test" {
			return nil, fmt.Errorf("%w: JWT_SECRET required in %q", errMissingSecret, env)
		}
		secret = "dev-secret"
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{secret: []byte(secret), ttl: 24 * time.Hour, now: now}, nil
}

// Sign signs the given claims, filling issued-at and expiry when unset.
func (s *Signer) Sign(claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("sub is required")
	}
	now := s.now().UTC()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	if claims.Purpose == "" {
		claims.Purpose = PurposeSession
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and expiry and returns the claims.
func (s *Signer) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
