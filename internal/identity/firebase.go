package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"

	"glownexa-backend/internal/shared/auth"
)

// firebaseAuth is the subset of *fbauth.Client the provider calls.
type firebaseAuth interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	EmailVerificationLinkWithSettings(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error)
	PasswordResetLinkWithSettings(ctx context.Context, email string, settings *fbauth.ActionCodeSettings) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseProvider manages accounts in Firebase Authentication.
type FirebaseProvider struct {
	client    firebaseAuth
	verifyURL string
	resetURL  string
}

// NewFirebaseProvider builds a provider from an initialised Firebase app.
// verifyURL and resetURL are the continue URLs embedded in emailed links.
func NewFirebaseProvider(ctx context.Context, app *firebase.App, verifyURL, resetURL string) (*FirebaseProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseProvider{client: client, verifyURL: verifyURL, resetURL: resetURL}, nil
}

// VerifyIDToken checks a Firebase ID token and extracts the caller.
func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (auth.Identity, error) {
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	id := auth.Identity{UID: token.UID}
	if v, ok := token.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := token.Claims["email_verified"].(bool); ok {
		id.EmailVerified = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		id.Name = v
	}
	return id, nil
}

// CreateUser registers an unverified email/password account.
func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return "", mapFirebaseError(err)
	}
	return rec.UID, nil
}

// DeleteUser removes the Firebase account. A missing account is not an error.
func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil && !fbauth.IsUserNotFound(err) {
		return mapFirebaseError(err)
	}
	return nil
}

// EmailVerificationLink generates a verify-email action link.
func (p *FirebaseProvider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.EmailVerificationLinkWithSettings(ctx, email, p.settings(p.verifyURL))
	if err != nil {
		return "", mapFirebaseError(err)
	}
	return link, nil
}

// PasswordResetLink generates a reset-password action link.
func (p *FirebaseProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := p.client.PasswordResetLinkWithSettings(ctx, email, p.settings(p.resetURL))
	if err != nil {
		return "", mapFirebaseError(err)
	}
	return link, nil
}

func (p *FirebaseProvider) settings(continueURL string) *fbauth.ActionCodeSettings {
	if continueURL == "" {
		return nil
	}
	return &fbauth.ActionCodeSettings{URL: continueURL, HandleCodeInApp: false}
}

func mapFirebaseError(err error) error {
	var idErr *Error
	if errors.As(err, &idErr) {
		return err
	}
	switch {
	case fbauth.IsEmailAlreadyExists(err):
		return &Error{Code: CodeEmailInUse, Msg: err.Error()}
	case fbauth.IsUserNotFound(err), fbauth.IsEmailNotFound(err):
		return &Error{Code: CodeUserNotFound, Msg: err.Error()}
	case errorutils.IsResourceExhausted(err):
		return &Error{Code: CodeTooManyRequests, Msg: err.Error()}
	default:
		return err
	}
}

var _ Provider = (*FirebaseProvider)(nil)
