package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bora-tech/crm-api/internal/config"
	"github.com/bora-tech/crm-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongRealm   = errors.New("token issued for a different realm")
)

// TokenManager issues and validates the short-lived HS256 tokens used
// by both application realms. The realm travels as a claim and is
// checked against the route group on every request.
type TokenManager struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: time.Duration(cfg.TokenTTL) * time.Minute,
	}
}

// IssueToken creates a signed token for an authenticated user
func (m *TokenManager) IssueToken(email, name string, realm domain.Realm) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"name":  name,
		"realm": string(realm),
		"iat":   now.Unix(),
		"exp":   now.Add(m.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry and returns the user
// context carried in the claims.
func (m *TokenManager) ValidateToken(tokenString string) (*UserContext, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	realm := domain.Realm(extractString(claims, "realm"))
	if !realm.IsValid() {
		return nil, fmt.Errorf("%w: missing realm claim", ErrInvalidToken)
	}

	return &UserContext{
		Email: extractString(claims, "email", "sub"),
		Name:  extractString(claims, "name"),
		Realm: realm,
	}, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}
