package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightclass/conference-hub/pkg/logger"
)

func newTestServer(t *testing.T, config Config) *Server {
	t.Helper()
	s := NewServer(config, Dependencies{
		Logger: logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError}),
	})
	t.Cleanup(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
	})
	return s
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServer_RootServesEnvelope(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, "v1", resp.Meta.Version)
}

func TestServer_PropagatesIncomingRequestID(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Request-ID", "req-12345")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-12345", rec.Header().Get("X-Request-ID"))
}

func TestServer_RateLimitRejectsBursts(t *testing.T) {
	config := DefaultConfig()
	config.RateLimitPerMinute = 2
	s := newTestServer(t, config)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "rate_limit_exceeded", resp.Error.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	config := DefaultConfig()
	config.AllowedOrigins = []string{"https://portal.school.example"}
	s := newTestServer(t, config)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/students", nil)
	req.Header.Set("Origin", "https://portal.school.example")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://portal.school.example", rec.Header().Get("Access-Control-Allow-Origin"))

	// An origin outside the list gets no CORS headers.
	req = httptest.NewRequest(http.MethodOptions, "/api/v1/students", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ProtectedRoutesRequireKey(t *testing.T) {
	config := DefaultConfig()
	config.APIKeys = []string{"portal-key"}
	s := newTestServer(t, config)

	// Mutations without a key are rejected before the handler runs.
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/api/v1/students", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Reads stay open.
	rec = httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec,
		httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RecoveryMiddlewareReturns500(t *testing.T) {
	s := newTestServer(t, DefaultConfig())

	handler := s.withRecovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler bug")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/students", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "internal_server_error", resp.Error.Code)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl := newRateLimiter(2, 50*time.Millisecond)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// A different client has its own budget.
	assert.True(t, rl.Allow("10.0.0.2"))

	// The window slides: old requests expire.
	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop()
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:54321"
	assert.Equal(t, "192.0.2.10", clientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.7")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}

func TestGetQueryParamHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/students?grade=7A&limit=25&include_inactive=yes&bad=abc", nil)

	assert.Equal(t, "7A", getQueryParam(req, "grade", ""))
	assert.Equal(t, "fallback", getQueryParam(req, "missing", "fallback"))
	assert.Equal(t, 25, getQueryParamInt(req, "limit", 50))
	assert.Equal(t, 50, getQueryParamInt(req, "bad", 50))
	assert.True(t, getQueryParamBool(req, "include_inactive"))
	assert.False(t, getQueryParamBool(req, "missing"))
}
