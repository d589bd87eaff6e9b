package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ─────────────────────────────────────────────────────────────────────────────
// Health aggregation
// ─────────────────────────────────────────────────────────────────────────────

func TestCompositeHealthChecker_AllPassing(t *testing.T) {
	checker := NewCompositeHealthChecker("v1.2.3")
	checker.AddCheck("database", func(ctx context.Context) error { return nil })
	checker.AddCheck("cache", func(ctx context.Context) error { return nil })

	status := checker.Check(context.Background())

	assert.True(t, status.Healthy)
	assert.True(t, status.Ready)
	assert.Equal(t, "All checks passed", status.Message)
	assert.Equal(t, "v1.2.3", status.Version)
	require.Len(t, status.Checks, 2)
	assert.True(t, status.Checks["database"].Healthy)
	assert.Equal(t, "OK", status.Checks["cache"].Message)
}

func TestCompositeHealthChecker_ReportsFailures(t *testing.T) {
	checker := NewCompositeHealthChecker("v1")
	checker.AddCheck("database", func(ctx context.Context) error { return nil })
	checker.AddCheck("cache", func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	checker.AddCheck("summarizer", func(ctx context.Context) error {
		return errSummarizerUnavailable
	})

	status := checker.Check(context.Background())

	assert.False(t, status.Healthy)
	assert.False(t, status.Ready)
	// Failing names are sorted, so the message is deterministic.
	assert.Equal(t, "Some checks failed: cache, summarizer", status.Message)
	assert.Equal(t, "connection refused", status.Checks["cache"].Message)
	assert.True(t, status.Checks["database"].Healthy)
}

func TestCompositeHealthChecker_NoChecksIsHealthy(t *testing.T) {
	status := NewCompositeHealthChecker("v1").Check(context.Background())

	assert.True(t, status.Healthy)
	assert.Equal(t, "No health checks registered", status.Message)
}

type stubSummarizer struct{ healthy bool }

func (s stubSummarizer) IsHealthy() bool { return s.healthy }

func TestNewSummarizerCheck(t *testing.T) {
	assert.NoError(t, NewSummarizerCheck(stubSummarizer{healthy: true})(context.Background()))
	assert.Error(t, NewSummarizerCheck(stubSummarizer{healthy: false})(context.Background()))
}

// ─────────────────────────────────────────────────────────────────────────────
// API key authentication
// ─────────────────────────────────────────────────────────────────────────────

func TestAPIKeyAuth_PlainKeys(t *testing.T) {
	auth := NewAPIKeyAuth("X-API-Key", []string{"secret-one", "", "secret-two"})

	assert.True(t, auth.IsValid("secret-one"))
	assert.True(t, auth.IsValid("secret-two"))
	assert.False(t, auth.IsValid("wrong"))
	assert.False(t, auth.IsValid(""))
}

func TestAPIKeyAuth_BcryptHashes(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("teacher-portal-key"), bcrypt.MinCost)
	require.NoError(t, err)

	auth := NewAPIKeyAuth("X-API-Key", []string{string(hash)})

	assert.True(t, auth.IsValid("teacher-portal-key"))
	assert.False(t, auth.IsValid("teacher-portal-kez"))
}

func TestAPIKeyAuth_Middleware(t *testing.T) {
	auth := NewAPIKeyAuth("X-API-Key", []string{"secret"})
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	t.Run("missing key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/students", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing_api_key")
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	})

	t.Run("invalid key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/students", nil)
		req.Header.Set("X-API-Key", "wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_api_key")
	})

	t.Run("valid key in header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/students", nil)
		req.Header.Set("X-API-Key", "secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("valid key as bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/students", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}
