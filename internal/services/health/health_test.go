package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(NewService())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestReadyzReportsFailures(t *testing.T) {
	svc := NewService()
	svc.Register("database", func(context.Context) error { return nil })
	svc.Register("redis", func(context.Context) error { return errors.New("connection refused") })
	r := newTestRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var body struct {
		OK     bool              `json:"ok"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.OK || body.Checks["database"] != "ok" || body.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(NewService())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "contact_sent_total") {
		t.Fatalf("unexpected metrics response %d: %s", rec.Code, rec.Body.String())
	}
}
