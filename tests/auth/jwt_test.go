package auth_test

import (
	"testing"
	"time"

	"github.com/bora-tech/crm-api/internal/auth"
	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	return auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-tests-only",
		TokenTTL:  30,
	})
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm := newTokenManager(t)

	token, err := tm.IssueToken("sunil@bora.tech", "Sunil Bora", domain.RealmCRM)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sunil@bora.tech", userCtx.Email)
	assert.Equal(t, "Sunil Bora", userCtx.Name)
	assert.Equal(t, domain.RealmCRM, userCtx.Realm)
}

func TestTokenManager_RealmClaimSurvivesRoundTrip(t *testing.T) {
	tm := newTokenManager(t)

	token, err := tm.IssueToken("yash.b@bora.tech", "Yash Bora", domain.RealmGemBid)
	require.NoError(t, err)

	userCtx, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RealmGemBid, userCtx.Realm)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := newTokenManager(t)

	_, err := tm.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := newTokenManager(t)
	other := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "a-completely-different-secret",
		TokenTTL:  30,
	})

	token, err := other.IssueToken("sunil@bora.tech", "Sunil Bora", domain.RealmCRM)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	secret := "test-secret-key-for-tests-only"
	tm := auth.NewTokenManager(&config.AuthConfig{JWTSecret: secret, TokenTTL: 30})

	// sign an already-expired token with the shared secret
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   "sunil@bora.tech",
		"email": "sunil@bora.tech",
		"name":  "Sunil Bora",
		"realm": string(domain.RealmCRM),
		"iat":   now.Add(-2 * time.Hour).Unix(),
		"exp":   now.Add(-1 * time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = tm.ValidateToken(expired)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_RejectsMissingRealm(t *testing.T) {
	secret := "test-secret-key-for-tests-only"
	tm := auth.NewTokenManager(&config.AuthConfig{JWTSecret: secret, TokenTTL: 30})

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": "sunil@bora.tech",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsUnsignedToken(t *testing.T) {
	tm := newTokenManager(t)

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   "sunil@bora.tech",
		"realm": string(domain.RealmCRM),
		"exp":   now.Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.ValidateToken(unsigned)
	assert.Error(t, err)
}
