package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMeCreatesProfileFromClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "uid-7")
		c.Set("userEmail", "lin@example.com")
		c.Set("userName", "Lin")
		c.Set("emailVerified", true)
		c.Next()
	})
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(r.Group("/api/v1"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["uid"] != "uid-7" || body["username"] != "Lin" || body["emailVerified"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestMeRequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(r.Group("/api/v1"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
