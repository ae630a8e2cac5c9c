package identity

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"glownexa-backend/internal/shared/auth"
)

type devUser struct {
	uid          string
	email        string
	name         string
	passwordHash []byte
	verified     bool
}

// JWTProvider is an in-memory account store that signs its own tokens.
// It stands in for Firebase in local development.
type JWTProvider struct {
	signer    *auth.Signer
	actionURL string
	verifyURL string
	resetURL  string

	mu      sync.RWMutex
	byEmail map[string]*devUser
	byUID   map[string]*devUser
}

// NewJWTProvider returns a JWTProvider. actionURL is where emailed links point
// (the dev action routes); verifyURL and resetURL are passed along as continueUrl.
func NewJWTProvider(signer *auth.Signer, actionURL, verifyURL, resetURL string) *JWTProvider {
	return &JWTProvider{
		signer:    signer,
		actionURL: strings.TrimRight(actionURL, "/"),
		verifyURL: verifyURL,
		resetURL:  resetURL,
		byEmail:   make(map[string]*devUser),
		byUID:     make(map[string]*devUser),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerifyIDToken accepts session tokens issued by SignIn.
func (p *JWTProvider) VerifyIDToken(_ context.Context, idToken string) (auth.Identity, error) {
	claims, err := p.signer.Verify(idToken)
	if err != nil {
		return auth.Identity{}, err
	}
	if claims.Purpose != auth.PurposeSession {
		return auth.Identity{}, auth.ErrInvalidToken
	}
	id := auth.Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}
	p.mu.RLock()
	if u, ok := p.byUID[claims.Subject]; ok {
		id.EmailVerified = u.verified
	}
	p.mu.RUnlock()
	return id, nil
}

// CreateUser stores a new unverified account.
func (p *JWTProvider) CreateUser(_ context.Context, email, password, displayName string) (string, error) {
	key := normalizeEmail(email)
	if key == "" {
		return "", &Error{Code: CodeInvalidEmail}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", &Error{Code: CodeWeakPassword, Msg: err.Error()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byEmail[key]; ok {
		return "", &Error{Code: CodeEmailInUse}
	}
	u := &devUser{uid: uuid.NewString(), email: key, name: displayName, passwordHash: hash}
	p.byEmail[key] = u
	p.byUID[u.uid] = u
	return u.uid, nil
}

// DeleteUser removes an account. Unknown uids are ignored.
func (p *JWTProvider) DeleteUser(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.byUID[uid]; ok {
		delete(p.byEmail, u.email)
		delete(p.byUID, uid)
	}
	return nil
}

// SignIn checks a password and returns a session token.
func (p *JWTProvider) SignIn(_ context.Context, email, password string) (string, error) {
	p.mu.RLock()
	u, ok := p.byEmail[normalizeEmail(email)]
	var snapshot devUser
	if ok {
		snapshot = *u
	}
	p.mu.RUnlock()
	if !ok {
		return "", &Error{Code: CodeUserNotFound}
	}
	if err := bcrypt.CompareHashAndPassword(snapshot.passwordHash, []byte(password)); err != nil {
		return "", &Error{Code: CodeWrongPassword}
	}
	return p.signer.Sign(auth.Claims{
		Email:            snapshot.email,
		Name:             snapshot.name,
		EmailVerified:    snapshot.verified,
		Purpose:          auth.PurposeSession,
		RegisteredClaims: jwt.RegisteredClaims{Subject: snapshot.uid},
	})
}

// EmailVerificationLink signs a one-purpose verify token into a link.
func (p *JWTProvider) EmailVerificationLink(_ context.Context, email string) (string, error) {
	return p.actionLink(email, auth.PurposeVerifyEmail, "verify", p.verifyURL)
}

// PasswordResetLink signs a one-purpose reset token into a link.
func (p *JWTProvider) PasswordResetLink(_ context.Context, email string) (string, error) {
	return p.actionLink(email, auth.PurposeReset, "reset", p.resetURL)
}

func (p *JWTProvider) actionLink(email, purpose, path, continueURL string) (string, error) {
	p.mu.RLock()
	u, ok := p.byEmail[normalizeEmail(email)]
	var uid, addr string
	if ok {
		uid, addr = u.uid, u.email
	}
	p.mu.RUnlock()
	if !ok {
		return "", &Error{Code: CodeUserNotFound}
	}
	token, err := p.signer.Sign(auth.Claims{
		Email:            addr,
		Purpose:          purpose,
		RegisteredClaims: jwt.RegisteredClaims{Subject: uid},
	})
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("oobCode", token)
	if continueURL != "" {
		q.Set("continueUrl", continueURL)
	}
	return p.actionURL + "/" + path + "?" + q.Encode(), nil
}

// ApplyVerification marks the account behind a verify token as verified.
func (p *JWTProvider) ApplyVerification(_ context.Context, code string) error {
	uid, err := p.actionSubject(code, auth.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byUID[uid]
	if !ok {
		return &Error{Code: CodeUserNotFound}
	}
	u.verified = true
	return nil
}

// ResetPassword sets a new password for the account behind a reset token.
func (p *JWTProvider) ResetPassword(_ context.Context, code, newPassword string) error {
	uid, err := p.actionSubject(code, auth.PurposeReset)
	if err != nil {
		return err
	}
	if !CheckPassword(newPassword).OK() {
		return &Error{Code: CodeWeakPassword, Msg: PasswordRequirementsMessage}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byUID[uid]
	if !ok {
		return &Error{Code: CodeUserNotFound}
	}
	u.passwordHash = hash
	return nil
}

func (p *JWTProvider) actionSubject(code, purpose string) (string, error) {
	claims, err := p.signer.Verify(code)
	if err != nil || claims.Purpose != purpose {
		return "", &Error{Code: CodeInvalidActionCode}
	}
	return claims.Subject, nil
}

var _ Provider = (*JWTProvider)(nil)
