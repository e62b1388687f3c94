package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func adminTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminAuth(secret))
	r.GET("/admin/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	r := adminTestRouter("s3cr3t")

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestAdminAuth_WrongSecret(t *testing.T) {
	r := adminTestRouter("s3cr3t")

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(HeaderAdminSecret, "nope")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d; want 403", w.Code)
	}
}

func TestAdminAuth_CorrectSecret(t *testing.T) {
	r := adminTestRouter("s3cr3t")

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(HeaderAdminSecret, "s3cr3t")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
	}
}

func TestAdminAuth_EmptyConfiguredSecretRejectsEverything(t *testing.T) {
	r := adminTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(HeaderAdminSecret, "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d; want 403 when no secret is configured", w.Code)
	}
}
