package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func serveWithHeaders(config *HeadersConfig) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(HeadersMiddleware(config))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHeadersMiddleware_Defaults(t *testing.T) {
	w := serveWithHeaders(nil)

	expected := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none';",
		"Referrer-Policy":         "no-referrer",
		"X-Robots-Tag":            "noindex, nofollow",
		"Cache-Control":           "no-cache, no-store, must-revalidate",
	}

	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestHeadersMiddleware_Disabled(t *testing.T) {
	w := serveWithHeaders(&HeadersConfig{Enabled: false})

	if got := w.Header().Get("X-Frame-Options"); got != "" {
		t.Errorf("disabled middleware must not set headers, got %q", got)
	}
}

func TestHeadersMiddleware_CustomValues(t *testing.T) {
	config := DefaultHeadersConfig()
	config.FrameOptions = "SAMEORIGIN"
	config.ContentSecurityPolicy = ""

	w := serveWithHeaders(config)

	if got := w.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Errorf("X-Frame-Options = %q, want SAMEORIGIN", got)
	}
	if got := w.Header().Get("Content-Security-Policy"); got != "" {
		t.Errorf("empty CSP must not be set, got %q", got)
	}
}
