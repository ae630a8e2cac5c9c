// Package identity manages accounts against an identity provider: sign-up,
// verification and password-reset links, and ID token verification.
package identity

import (
	"context"
	"errors"

	"glownexa-backend/internal/shared/auth"
)

// Error codes shared by every provider. They match the codes the web client
// already displays messages for.
const (
	CodeEmailInUse        = "email-already-in-use"
	CodeWeakPassword      = "weak-password"
	CodeInvalidEmail      = "invalid-email"
	CodeUserNotFound      = "user-not-found"
	CodeWrongPassword     = "wrong-password"
	CodeUserDisabled      = "user-disabled"
	CodeTooManyRequests   = "too-many-requests"
	CodeInvalidCredential = "invalid-credential"
	CodeInvalidActionCode = "invalid-action-code"
)

// Error is a provider failure with a stable code.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return "identity: " + e.Code
	}
	return "identity: " + e.Code + ": " + e.Msg
}

// CodeOf returns the code carried by err, or "" when it has none.
func CodeOf(err error) string {
	var idErr *Error
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return ""
}

// Provider is the account backend.
type Provider interface {
	auth.Verifier
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}
