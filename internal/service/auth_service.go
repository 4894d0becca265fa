package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/bora-tech/crm-api/internal/auth"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/bora-tech/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fallbackUsers are the built-in logins per realm. They back up the
// seeded database rows so a fresh or degraded deployment still accepts
// the known operators.
var fallbackUsers = map[domain.Realm]domain.User{
	domain.RealmCRM: {
		Email:    "sunil@bora.tech",
		Password: "sunil@1202",
		Name:     "Sunil Bora",
		Realm:    domain.RealmCRM,
	},
	domain.RealmGemBid: {
		Email:    "yash.b@bora.tech",
		Password: "yash@123",
		Name:     "Yash Bora",
		Realm:    domain.RealmGemBid,
	},
}

type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login authenticates a user within one realm and issues a token bound
// to that realm. Credentials are checked against the users table, with
// the built-in fallback covering lookup failures.
func (s *AuthService) Login(ctx context.Context, realm domain.Realm, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmailAndRealm(ctx, email, realm)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("user lookup failed, checking built-in credentials",
				zap.String("realm", string(realm)),
				zap.Error(err),
			)
		}
		fallback, ok := fallbackUsers[realm]
		if !ok || !strings.EqualFold(fallback.Email, email) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		user = &fallback
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.tokens.IssueToken(user.Email, user.Name, realm)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("email", user.Email),
		zap.String("realm", string(realm)),
	)

	return &domain.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Name:        user.Name,
		Email:       user.Email,
		Realm:       realm,
	}, nil
}
