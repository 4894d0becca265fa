package service_test

import (
	"context"
	"testing"

	"github.com/bora-tech/crm-api/internal/auth"
	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/database"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/repository"
	"github.com/bora-tech/crm-api/internal/service"
	"github.com/bora-tech/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createAuthService(db *gorm.DB) (*service.AuthService, *auth.TokenManager) {
	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-tests-only",
		TokenTTL:  30,
	})
	return service.NewAuthService(repository.NewUserRepository(db), tokens, zap.NewNop()), tokens
}

func TestAuthService_Login_SeededUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	require.NoError(t, database.SeedDefaultUsers(db))
	svc, tokens := createAuthService(db)

	resp, err := svc.Login(context.Background(), domain.RealmCRM, &domain.LoginRequest{
		Email:    "sunil@bora.tech",
		Password: "sunil@1202",
	})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "sunil@bora.tech", resp.Email)
	assert.Equal(t, domain.RealmCRM, resp.Realm)

	userCtx, err := tokens.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RealmCRM, userCtx.Realm)
}

func TestAuthService_Login_EmailIsCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	require.NoError(t, database.SeedDefaultUsers(db))
	svc, _ := createAuthService(db)

	resp, err := svc.Login(context.Background(), domain.RealmGemBid, &domain.LoginRequest{
		Email:    "  Yash.B@bora.tech ",
		Password: "yash@123",
	})
	require.NoError(t, err)
	assert.Equal(t, "yash.b@bora.tech", resp.Email)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	require.NoError(t, database.SeedDefaultUsers(db))
	svc, _ := createAuthService(db)

	_, err := svc.Login(context.Background(), domain.RealmCRM, &domain.LoginRequest{
		Email:    "sunil@bora.tech",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_Login_RealmsAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	require.NoError(t, database.SeedDefaultUsers(db))
	svc, _ := createAuthService(db)

	// the GEM BID user cannot log into the CRM realm with the same password
	_, err := svc.Login(context.Background(), domain.RealmCRM, &domain.LoginRequest{
		Email:    "yash.b@bora.tech",
		Password: "yash@123",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_Login_FallbackWithoutSeededUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := createAuthService(db)

	// users table is empty; the built-in credentials still work
	resp, err := svc.Login(context.Background(), domain.RealmCRM, &domain.LoginRequest{
		Email:    "sunil@bora.tech",
		Password: "sunil@1202",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sunil Bora", resp.Name)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := createAuthService(db)

	_, err := svc.Login(context.Background(), domain.RealmCRM, &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthService_Login_DatabaseUserOverridesFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, _ := createAuthService(db)

	require.NoError(t, db.Create(&domain.User{
		Email:    "sunil@bora.tech",
		Password: "rotated-password",
		Name:     "Sunil Bora",
		Realm:    domain.RealmCRM,
	}).Error)

	_, err := svc.Login(context.Background(), domain.RealmCRM, &domain.LoginRequest{
		Email:    "sunil@bora.tech",
		Password: "sunil@1202",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized, "stored credentials win over the built-in ones")

	resp, err := svc.Login(context.Background(), domain.RealmCRM, &domain.LoginRequest{
		Email:    "sunil@bora.tech",
		Password: "rotated-password",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RealmCRM, resp.Realm)
}
