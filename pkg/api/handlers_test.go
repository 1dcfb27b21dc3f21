package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kerlexov/errorlog/pkg/apperror"
	"github.com/kerlexov/errorlog/pkg/auth"
	"github.com/kerlexov/errorlog/pkg/config"
	"github.com/kerlexov/errorlog/pkg/errlog"
	"github.com/kerlexov/errorlog/pkg/storage"
)

func newTestServer(t *testing.T, withStore bool) (*Server, *gin.Engine) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	logger, err := errlog.New(t.TempDir(), errlog.Options{DisableConsole: true})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })

	var store storage.ErrorStore
	if withStore {
		sqlStore, err := storage.NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		t.Cleanup(func() { sqlStore.Close() })
		store = sqlStore
	}

	server := NewServer(config.APIConfig{
		Port:              9090,
		RequestsPerMinute: 60000,
		BurstSize:         1000,
	}, logger, store, nil)
	t.Cleanup(func() { server.rateLimiter.Stop() })

	router := gin.New()
	router.Use(auth.Middleware(server.auth))
	server.registerRoutes(router)

	return server, router
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, w.Body.String())
	}
	return body
}

func TestHandleHealthCheck(t *testing.T) {
	_, router := newTestServer(t, true)

	w := doRequest(router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeJSON(t, w)
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", body["status"])
	}
	if body["storage"] == nil {
		t.Error("expected storage health in response")
	}
	if body["metrics"] == nil {
		t.Error("expected metrics snapshot in response")
	}
}

func TestHandleSummary(t *testing.T) {
	server, router := newTestServer(t, false)

	server.logger.LogError(apperror.New("db gone",
		apperror.WithComponent(apperror.ComponentDatabase)))
	server.logger.LogError(apperror.New("db gone again",
		apperror.WithComponent(apperror.ComponentDatabase)))

	w := doRequest(router, http.MethodGet, "/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	if body["total_errors"].(float64) != 2 {
		t.Errorf("expected total_errors 2, got %v", body["total_errors"])
	}

	byComponent := body["errors_by_component"].(map[string]interface{})
	if byComponent["database"].(float64) != 2 {
		t.Errorf("expected 2 database errors, got %v", byComponent["database"])
	}
}

func TestHandleDigest(t *testing.T) {
	server, router := newTestServer(t, false)

	w := doRequest(router, http.MethodGet, "/digest", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any error is logged, got %d", w.Code)
	}

	server.logger.LogError(apperror.New("template missing"))

	w = doRequest(router, http.MethodGet, "/digest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after logging, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("ERROR CONTEXT FOR AI DEBUGGING")) {
		t.Error("digest body missing header")
	}
}

func TestHandleRecentErrors(t *testing.T) {
	server, router := newTestServer(t, false)

	for i := 0; i < 5; i++ {
		server.logger.LogError(apperror.New("boom"))
	}

	w := doRequest(router, http.MethodGet, "/errors/recent?limit=3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	if body["count"].(float64) != 3 {
		t.Errorf("expected 3 records, got %v", body["count"])
	}
}

func TestHandleSearchErrors(t *testing.T) {
	server, router := newTestServer(t, true)

	appErr := apperror.New("connection refused",
		apperror.WithComponent(apperror.ComponentDatabase))
	record := appErr.Record()
	if err := server.store.Store(context.Background(), record); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	w := doRequest(router, http.MethodGet, "/errors/search?component=database", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeJSON(t, w)
	if body["total_count"].(float64) != 1 {
		t.Errorf("expected 1 result, got %v", body["total_count"])
	}
}

func TestHandleSearchErrors_BadTimestamp(t *testing.T) {
	_, router := newTestServer(t, true)

	w := doRequest(router, http.MethodGet, "/errors/search?start=yesterday", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	errBody := body["error"].(map[string]interface{})
	if errBody["code"] != "INVALID_PARAMETER" {
		t.Errorf("expected INVALID_PARAMETER, got %v", errBody["code"])
	}
}

func TestHandleSearchErrors_StoreDisabled(t *testing.T) {
	_, router := newTestServer(t, false)

	w := doRequest(router, http.MethodGet, "/errors/search", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	errBody := body["error"].(map[string]interface{})
	if errBody["code"] != "STORE_DISABLED" {
		t.Errorf("expected STORE_DISABLED, got %v", errBody["code"])
	}
}

func TestHandleErrorByCode(t *testing.T) {
	server, router := newTestServer(t, true)

	appErr := apperror.New("lost connection")
	record := appErr.Record()
	if err := server.store.Store(context.Background(), record); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}

	w := doRequest(router, http.MethodGet, "/errors/"+appErr.Code, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeJSON(t, w)
	found := body["error_record"].(map[string]interface{})
	if found["error_code"] != appErr.Code {
		t.Errorf("expected code %s, got %v", appErr.Code, found["error_code"])
	}

	w = doRequest(router, http.MethodGet, "/errors/APP-DEADBEEF", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown code, got %d", w.Code)
	}
}

func TestHandleReportError(t *testing.T) {
	server, router := newTestServer(t, false)

	payload, _ := json.Marshal(map[string]interface{}{
		"message":   "remote worker crashed",
		"severity":  "error",
		"component": "api",
		"user_id":   "user-42",
		"data":      map[string]interface{}{"job": "render"},
	})

	w := doRequest(router, http.MethodPost, "/errors", payload)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeJSON(t, w)
	if body["error_code"] == nil || body["error_code"] == "" {
		t.Error("expected a generated error code in the response")
	}

	total, _, _ := server.logger.Totals()
	if total != 1 {
		t.Errorf("expected the report to reach the logger, total %d", total)
	}
}

func TestHandleReportError_InvalidJSON(t *testing.T) {
	_, router := newTestServer(t, false)

	w := doRequest(router, http.MethodPost, "/errors", []byte("{not json"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleReportError_MissingMessage(t *testing.T) {
	_, router := newTestServer(t, false)

	w := doRequest(router, http.MethodPost, "/errors", []byte(`{"severity":"error"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing message, got %d", w.Code)
	}
}

func TestHandleReportError_BadSeverity(t *testing.T) {
	_, router := newTestServer(t, false)

	payload, _ := json.Marshal(map[string]interface{}{
		"message":  "bad report",
		"severity": "fatal",
	})

	w := doRequest(router, http.MethodPost, "/errors", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown severity, got %d", w.Code)
	}

	body := decodeJSON(t, w)
	errBody := body["error"].(map[string]interface{})
	if errBody["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %v", errBody["code"])
	}
}

func TestParseIntParam_Clamping(t *testing.T) {
	server, router := newTestServer(t, false)

	for i := 0; i < 5; i++ {
		server.logger.LogError(apperror.New("clamp test"))
	}

	w := doRequest(router, http.MethodGet, "/errors/recent?limit=9999", nil)
	body := decodeJSON(t, w)
	if body["count"].(float64) != 5 {
		t.Errorf("expected all 5 records under the clamped limit, got %v", body["count"])
	}

	w = doRequest(router, http.MethodGet, "/errors/recent?limit=garbage", nil)
	if w.Code != http.StatusOK {
		t.Errorf("non-numeric limit falls back to the default, got %d", w.Code)
	}
}
