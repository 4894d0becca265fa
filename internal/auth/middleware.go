package auth

import (
	"net/http"
	"strings"

	"github.com/bora-tech/crm-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens *TokenManager
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(tokens *TokenManager, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireRealm authenticates the bearer token and checks that it was
// issued for the given realm. Tokens from the other realm are rejected
// even though they share the signing key.
func (m *Middleware) RequireRealm(realm domain.Realm) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userCtx, err := m.tokens.ValidateToken(parts[1])
			if err != nil {
				m.logger.Warn("token validation failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			if userCtx.Realm != realm {
				m.logger.Warn("realm mismatch",
					zap.String("path", r.URL.Path),
					zap.String("token_realm", string(userCtx.Realm)),
					zap.String("required_realm", string(realm)),
				)
				http.Error(w, "Unauthorized: "+ErrWrongRealm.Error(), http.StatusUnauthorized)
				return
			}

			ctx := WithUserContext(r.Context(), userCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
