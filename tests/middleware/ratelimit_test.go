package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newRateLimiter(cfg *config.RateLimitConfig) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg, zap.NewNop())
}

func doRequest(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "203.0.113.5:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := newRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1})
	handler := rl.Limit(okHandler())

	for i := 0; i < 10; i++ {
		rec := doRequest(handler, "/api/customers")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_BlocksAboveLimit(t *testing.T) {
	rl := newRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3})
	handler := rl.Limit(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(handler, "/api/customers")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within the limit", i+1)
	}

	rec := doRequest(handler, "/api/customers")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimiter_WhitelistedPathBypasses(t *testing.T) {
	rl := newRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistPaths:    []string{"/health"},
	})
	handler := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		rec := doRequest(handler, "/health")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_WildcardWhitelist(t *testing.T) {
	rl := newRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistPaths:    []string{"/api/files/*"},
	})
	handler := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		rec := doRequest(handler, "/api/files/aa/bb/doc.pdf")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
