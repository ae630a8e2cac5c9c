package identity

import (
	"net/url"
	"testing"
	"time"

	"glownexa-backend/internal/mail"
	"glownexa-backend/internal/shared/auth"
	"glownexa-backend/internal/users"
)

func newTestProvider(t *testing.T) *JWTProvider {
	t.Helper()
	signer, err := auth.NewSigner("test-secret", "test", func() time.Time { return time.Now() })
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return NewJWTProvider(signer, "http://localhost:4000/api/auth/action", "https://glownexa.vercel.app/login", "https://glownexa.vercel.app/login")
}

func newTestService(t *testing.T) (*Service, *JWTProvider, *mail.Recorder, *users.Service) {
	t.Helper()
	provider := newTestProvider(t)
	recorder := &mail.Recorder{}
	userSvc := users.NewService(users.NewMemoryRepo())
	svc := &Service{
		Provider:    provider,
		Users:       userSvc,
		Mailer:      recorder,
		FromName:    "GlowNexa",
		FromAddress: "no-reply@glownexa.test",
	}
	return svc, provider, recorder, userSvc
}

func oobCode(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link %q: %v", link, err)
	}
	code := u.Query().Get("oobCode")
	if code == "" {
		t.Fatalf("link %q has no oobCode", link)
	}
	return code
}
