package identity

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"glownexa-backend/internal/users"
)

var linkPattern = regexp.MustCompile(`http://localhost:4000/api/auth/action/\S+`)

func TestRegisterCreatesAccountProfileAndMail(t *testing.T) {
	svc, provider, recorder, userSvc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{Username: "Maya", Email: "maya@example.com", Password: "Glow1ng!Skin"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.UID == "" || !res.VerificationSent {
		t.Fatalf("unexpected result: %+v", res)
	}
	profile, err := userSvc.Get(ctx, res.UID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Username != "Maya" || profile.Email != "maya@example.com" || profile.CreatedAt == "" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	sent := recorder.Sent()
	if len(sent) != 1 || sent[0].To != "maya@example.com" || !strings.Contains(sent[0].Subject, "Verify") {
		t.Fatalf("unexpected mail: %+v", sent)
	}
	link := linkPattern.FindString(sent[0].Text)
	if !strings.Contains(link, "/verify?") {
		t.Fatalf("expected verify link in %q", sent[0].Text)
	}
	if err := provider.ApplyVerification(ctx, oobCode(t, link)); err != nil {
		t.Fatalf("ApplyVerification: %v", err)
	}
	token, err := provider.SignIn(ctx, "maya@example.com", "Glow1ng!Skin")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	id, err := provider.VerifyIDToken(ctx, token)
	if err != nil || !id.EmailVerified || id.UID != res.UID {
		t.Fatalf("unexpected identity %+v (%v)", id, err)
	}
}

type failingUserRepo struct{}

func (failingUserRepo) Create(context.Context, users.User) error {
	return errors.New("database unavailable")
}

func (failingUserRepo) Get(context.Context, string) (users.User, error) {
	return users.User{}, users.ErrNotFound
}

func TestRegisterRollsBackAccountWhenProfileFails(t *testing.T) {
	svc, provider, recorder, _ := newTestService(t)
	svc.Users = users.NewService(failingUserRepo{})
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "Maya", Email: "maya@example.com", Password: "Glow1ng!Skin"}); err == nil {
		t.Fatalf("expected profile failure to surface")
	}
	if len(recorder.Sent()) != 0 {
		t.Fatalf("expected no verification mail, got %d", len(recorder.Sent()))
	}
	if _, err := provider.SignIn(ctx, "maya@example.com", "Glow1ng!Skin"); CodeOf(err) != CodeUserNotFound {
		t.Fatalf("expected account to be removed, got %v", err)
	}
	if _, err := provider.CreateUser(ctx, "maya@example.com", "Glow1ng!Skin", "Maya"); err != nil {
		t.Fatalf("expected email to be free again: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, recorder, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "a", Email: "not-an-email", Password: "Glow1ng!Skin"})
	if CodeOf(err) != CodeInvalidEmail {
		t.Fatalf("expected invalid-email, got %v", err)
	}

	_, err = svc.Register(ctx, RegisterInput{Username: "a", Email: "a@example.com", Password: "weakpass"})
	var pwErr *PasswordError
	if !errors.As(err, &pwErr) {
		t.Fatalf("expected PasswordError, got %v", err)
	}
	if pwErr.Requirements.Uppercase || !pwErr.Requirements.Lowercase || !pwErr.Requirements.Length {
		t.Fatalf("unexpected requirements: %+v", pwErr.Requirements)
	}

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "Glow1ng!Skin"})
	if CodeOf(err) != CodeMissingFields {
		t.Fatalf("expected missing-fields, got %v", err)
	}
	if len(recorder.Sent()) != 0 {
		t.Fatalf("no mail expected on validation failures")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	in := RegisterInput{Username: "Maya", Email: "maya@example.com", Password: "Glow1ng!Skin"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("Register: %v", err)
	}
	in.Email = "MAYA@example.com"
	if _, err := svc.Register(ctx, in); CodeOf(err) != CodeEmailInUse {
		t.Fatalf("expected email-already-in-use, got %v", err)
	}
}

func TestRegisterKeepsAccountWhenMailFails(t *testing.T) {
	svc, _, recorder, userSvc := newTestService(t)
	recorder.Err = errors.New("smtp down")

	res, err := svc.Register(context.Background(), RegisterInput{Username: "Maya", Email: "maya@example.com", Password: "Glow1ng!Skin"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.VerificationSent {
		t.Fatalf("expected VerificationSent=false")
	}
	if _, err := userSvc.Get(context.Background(), res.UID); err != nil {
		t.Fatalf("expected profile to exist: %v", err)
	}
}

func TestForgotPasswordFlow(t *testing.T) {
	svc, provider, recorder, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.ForgotPassword(ctx, "ghost@example.com"); CodeOf(err) != CodeUserNotFound {
		t.Fatalf("expected user-not-found, got %v", err)
	}
	if err := svc.ForgotPassword(ctx, "nope"); CodeOf(err) != CodeInvalidEmail {
		t.Fatalf("expected invalid-email, got %v", err)
	}

	if _, err := svc.Register(ctx, RegisterInput{Username: "Maya", Email: "maya@example.com", Password: "Glow1ng!Skin"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.ForgotPassword(ctx, "maya@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	sent := recorder.Sent()
	last := sent[len(sent)-1]
	link := linkPattern.FindString(last.Text)
	if !strings.Contains(link, "/reset?") {
		t.Fatalf("expected reset link in %q", last.Text)
	}
	if err := provider.ResetPassword(ctx, oobCode(t, link), "N3w!Password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := provider.SignIn(ctx, "maya@example.com", "Glow1ng!Skin"); CodeOf(err) != CodeWrongPassword {
		t.Fatalf("old password should fail, got %v", err)
	}
	if _, err := provider.SignIn(ctx, "maya@example.com", "N3w!Password"); err != nil {
		t.Fatalf("new password: %v", err)
	}
}

func TestActionCodesArePurposeBound(t *testing.T) {
	svc, provider, recorder, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Username: "Maya", Email: "maya@example.com", Password: "Glow1ng!Skin"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	verifyCode := oobCode(t, linkPattern.FindString(recorder.Sent()[0].Text))

	if err := provider.ResetPassword(ctx, verifyCode, "N3w!Password"); CodeOf(err) != CodeInvalidActionCode {
		t.Fatalf("verify code must not reset passwords, got %v", err)
	}
	if _, err := provider.VerifyIDToken(ctx, verifyCode); err == nil {
		t.Fatalf("verify code must not act as a session token")
	}
}
