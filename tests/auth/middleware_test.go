package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bora-tech/crm-api/internal/auth"
	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMiddleware(t *testing.T) (*auth.Middleware, *auth.TokenManager) {
	t.Helper()
	tm := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-tests-only",
		TokenTTL:  30,
	})
	return auth.NewMiddleware(tm, zap.NewNop()), tm
}

func protectedHandler(captured **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userCtx, ok := auth.FromContext(r.Context()); ok {
			*captured = userCtx
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRealm_MissingHeader(t *testing.T) {
	mw, _ := setupMiddleware(t)

	var captured *auth.UserContext
	handler := mw.RequireRealm(domain.RealmCRM)(protectedHandler(&captured))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestRequireRealm_MalformedHeader(t *testing.T) {
	mw, _ := setupMiddleware(t)

	var captured *auth.UserContext
	handler := mw.RequireRealm(domain.RealmCRM)(protectedHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRealm_InvalidToken(t *testing.T) {
	mw, _ := setupMiddleware(t)

	var captured *auth.UserContext
	handler := mw.RequireRealm(domain.RealmCRM)(protectedHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRealm_WrongRealm(t *testing.T) {
	mw, tm := setupMiddleware(t)

	token, err := tm.IssueToken("yash.b@bora.tech", "Yash Bora", domain.RealmGemBid)
	require.NoError(t, err)

	var captured *auth.UserContext
	handler := mw.RequireRealm(domain.RealmCRM)(protectedHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "different realm")
	assert.Nil(t, captured)
}

func TestRequireRealm_ValidToken(t *testing.T) {
	mw, tm := setupMiddleware(t)

	token, err := tm.IssueToken("sunil@bora.tech", "Sunil Bora", domain.RealmCRM)
	require.NoError(t, err)

	var captured *auth.UserContext
	handler := mw.RequireRealm(domain.RealmCRM)(protectedHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "sunil@bora.tech", captured.Email)
	assert.Equal(t, domain.RealmCRM, captured.Realm)
}

func TestUserContext_RoundTrip(t *testing.T) {
	userCtx := &auth.UserContext{
		Email: "sunil@bora.tech",
		Name:  "Sunil Bora",
		Realm: domain.RealmCRM,
	}

	ctx := auth.WithUserContext(context.Background(), userCtx)
	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userCtx, got)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}
