package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func passThrough() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func TestContentTypeJSON_AcceptsJSON(t *testing.T) {
	next, called := passThrough()
	handler := ContentTypeJSON(next)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}

func TestContentTypeJSON_RejectsWrongType(t *testing.T) {
	next, called := passThrough()
	handler := ContentTypeJSON(next)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contacts", strings.NewReader(`<xml/>`))
	req.Header.Set("Content-Type", "text/xml")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.False(t, *called)
}

func TestContentTypeJSON_IgnoresBodylessGet(t *testing.T) {
	next, called := passThrough()
	handler := ContentTypeJSON(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *called)
}

func TestCORS_DevelopmentWildcard(t *testing.T) {
	next, _ := passThrough()
	handler := CORS(CORSConfig{Environment: "development"})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ProductionAllowList(t *testing.T) {
	next, _ := passThrough()
	cfg := CORSConfig{Environment: "production", AllowedOrigins: []string{"https://crm.example.com"}}
	handler := CORS(cfg)(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://crm.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/contacts", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	next, called := passThrough()
	handler := CORS(CORSConfig{Environment: "development"})(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/contacts", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, *called)
}
