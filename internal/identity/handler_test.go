package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"glownexa-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T, svc *Service, provider *JWTProvider, limit int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := middleware.NewMemoryWindowStore(nil)
	limiter := func(name string, onLimit func(*gin.Context, time.Duration)) gin.HandlerFunc {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Name:    name,
			Window:  middleware.Window{Limit: limit, Period: time.Minute},
			Store:   store,
			OnLimit: onLimit,
		})
	}
	authGroup := r.Group("/api/auth")
	NewHandler(svc).RegisterRoutes(authGroup, limiter)
	(&DevHandler{Provider: provider, ContinueOrigins: []string{"https://glownexa.vercel.app"}}).RegisterRoutes(authGroup)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(provider, middleware.AuthOptions{}))
	NewHandler(svc).RegisterProtectedRoutes(v1)
	return r
}

type formResponse struct {
	Success      bool                 `json:"success"`
	Code         string               `json:"code"`
	Error        string               `json:"error"`
	Message      string               `json:"message"`
	UID          string               `json:"uid"`
	IDToken      string               `json:"idToken"`
	Requirements PasswordRequirements `json:"requirements"`
}

func post(t *testing.T, r http.Handler, path, body, bearer string) (int, formResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var resp formResponse
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, resp
}

func TestRegisterEndpoint(t *testing.T) {
	svc, provider, _, _ := newTestService(t)
	r := newTestRouter(t, svc, provider, 10)

	status, resp := post(t, r, "/api/auth/register", `{"username":"Maya","email":"maya@example.com","password":"Glow1ng!Skin"}`, "")
	if status != http.StatusCreated || !resp.Success || resp.UID == "" {
		t.Fatalf("unexpected register response %d %+v", status, resp)
	}

	status, resp = post(t, r, "/api/auth/register", `{"username":"Maya","email":"maya@example.com","password":"Glow1ng!Skin"}`, "")
	if status != http.StatusConflict || resp.Code != CodeEmailInUse {
		t.Fatalf("expected 409 email-already-in-use, got %d %+v", status, resp)
	}
	if resp.Error != "This email is already registered. Please use a different email or try logging in." {
		t.Fatalf("unexpected message %q", resp.Error)
	}

	status, resp = post(t, r, "/api/auth/register", `{"username":"Maya","email":"other@example.com","password":"short"}`, "")
	if status != http.StatusBadRequest || resp.Error != PasswordRequirementsMessage || resp.Code != CodeWeakPassword {
		t.Fatalf("unexpected weak password response %d %+v", status, resp)
	}
	if !resp.Requirements.Lowercase || resp.Requirements.Length {
		t.Fatalf("unexpected requirements %+v", resp.Requirements)
	}
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	svc, provider, recorder, _ := newTestService(t)
	r := newTestRouter(t, svc, provider, 10)

	if status, _ := post(t, r, "/api/auth/register", `{"username":"Maya","email":"maya@example.com","password":"Glow1ng!Skin"}`, ""); status != http.StatusCreated {
		t.Fatalf("register failed: %d", status)
	}

	status, resp := post(t, r, "/api/auth/dev/login", `{"email":"maya@example.com","password":"Glow1ng!Skin"}`, "")
	if status != http.StatusForbidden || resp.Error != UnverifiedLoginMessage {
		t.Fatalf("expected unverified rejection, got %d %+v", status, resp)
	}

	status, resp = post(t, r, "/api/auth/dev/login", `{"email":"maya@example.com","password":"wrong"}`, "")
	if status != http.StatusUnauthorized || resp.Error != "Incorrect password. Please try again." {
		t.Fatalf("expected wrong-password, got %d %+v", status, resp)
	}

	link := linkPattern.FindString(recorder.Sent()[0].Text)
	req := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(link, "http://localhost:4000"), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "https://glownexa.vercel.app/login" {
		t.Fatalf("expected redirect to continue URL, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	status, resp = post(t, r, "/api/auth/dev/login", `{"email":"maya@example.com","password":"Glow1ng!Skin"}`, "")
	if status != http.StatusOK || resp.IDToken == "" {
		t.Fatalf("expected login success, got %d %+v", status, resp)
	}
}

func TestVerifyRedirectsOnlyToAllowedOrigins(t *testing.T) {
	cases := []struct {
		name         string
		continueURL  string
		wantStatus   int
		wantLocation string
	}{
		{"allowed origin", "https://glownexa.vercel.app/login?verified=1", http.StatusFound, "https://glownexa.vercel.app/login?verified=1"},
		{"foreign origin", "https://evil.example/phish", http.StatusOK, ""},
		{"lookalike host", "https://glownexa.vercel.app.evil.example/login", http.StatusOK, ""},
		{"scheme relative", "//evil.example/phish", http.StatusOK, ""},
		{"javascript", "javascript:alert(1)", http.StatusOK, ""},
		{"none", "", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, provider, _, _ := newTestService(t)
			r := newTestRouter(t, svc, provider, 10)
			ctx := context.Background()
			if _, err := provider.CreateUser(ctx, "ana@example.com", "Glow1ng!Skin", "Ana"); err != nil {
				t.Fatalf("CreateUser: %v", err)
			}
			link, err := provider.EmailVerificationLink(ctx, "ana@example.com")
			if err != nil {
				t.Fatalf("EmailVerificationLink: %v", err)
			}
			q := url.Values{}
			q.Set("oobCode", oobCode(t, link))
			if tc.continueURL != "" {
				q.Set("continueUrl", tc.continueURL)
			}

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/action/verify?"+q.Encode(), nil))
			if rec.Code != tc.wantStatus || rec.Header().Get("Location") != tc.wantLocation {
				t.Fatalf("expected %d %q, got %d %q", tc.wantStatus, tc.wantLocation, rec.Code, rec.Header().Get("Location"))
			}
			if tc.wantStatus == http.StatusOK && !strings.Contains(rec.Body.String(), "Email verified") {
				t.Fatalf("expected JSON success body, got %s", rec.Body.String())
			}
		})
	}
}

func TestResendVerificationForUnverifiedUser(t *testing.T) {
	svc, provider, recorder, _ := newTestService(t)
	r := newTestRouter(t, svc, provider, 10)
	ctx := context.Background()

	if _, err := provider.CreateUser(ctx, "lee@example.com", "Glow1ng!Skin", "Lee"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := provider.SignIn(ctx, "lee@example.com", "Glow1ng!Skin")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	status, resp := post(t, r, "/api/v1/auth/resend-verification", ``, token)
	if status != http.StatusOK || resp.Message != VerificationSentMessage {
		t.Fatalf("unexpected resend response %d %+v", status, resp)
	}
	if len(recorder.Sent()) != 1 || recorder.Sent()[0].To != "lee@example.com" {
		t.Fatalf("expected one verification mail, got %+v", recorder.Sent())
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/resend-verification", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestForgotPasswordRateLimited(t *testing.T) {
	svc, provider, _, _ := newTestService(t)
	r := newTestRouter(t, svc, provider, 2)

	for i := 0; i < 2; i++ {
		status, resp := post(t, r, "/api/auth/forgot-password", `{"email":"ghost@example.com"}`, "")
		if status != http.StatusNotFound || resp.Error != "No account found with this email address." {
			t.Fatalf("request %d: unexpected %d %+v", i, status, resp)
		}
	}
	status, resp := post(t, r, "/api/auth/forgot-password", `{"email":"ghost@example.com"}`, "")
	if status != http.StatusTooManyRequests || resp.Error != "Too many requests. Please try again later." || resp.Code != CodeTooManyRequests {
		t.Fatalf("expected limiter rejection, got %d %+v", status, resp)
	}
}

func TestMessagesEndpoint(t *testing.T) {
	svc, provider, _, _ := newTestService(t)
	r := newTestRouter(t, svc, provider, 10)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/messages/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Messages   map[string]string `json:"messages"`
		Unverified string            `json:"unverified"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Messages["user-disabled"] != "This account has been disabled." || body.Unverified != UnverifiedLoginMessage {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/messages/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
