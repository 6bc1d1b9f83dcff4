package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/shared/utils"
)

type contextKey string

const (
	ContextKeyUserId contextKey = "user_id"
	ContextKeyRole   contextKey = "role"
)

// SessionValidator checks whether a token has been revoked and refreshes
// the session's last-seen timestamp. A nil validator disables both.
type SessionValidator interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Touch(ctx context.Context, userID uuid.UUID, tokenID string) error
}

type AuthMiddleWare struct {
	jwtSecret string
	sessions  SessionValidator
}

// NewAuthMiddleware creates and returns a new instance of AuthMiddleWare.
// The jwtSecret parameter should contain a secure secret key for signing and
// verifying JWT tokens. Pass a nil sessions validator to skip revocation
// checks, for example in tests.
func NewAuthMiddleware(jwtSecret string, sessions SessionValidator) *AuthMiddleWare {
	return &AuthMiddleWare{jwtSecret: jwtSecret, sessions: sessions}
}

// RequireAuth is a middleware function that enforces authentication on HTTP
// requests. It validates the presence and format of a Bearer token in the
// Authorization header (or a token query parameter, for websocket upgrades),
// verifies the token against the stored JWT secret and the revocation list,
// and injects the authenticated user's ID and role into the request context
// for downstream handlers. If authentication fails at any step, it returns a
// 401 Unauthorized response.
func (m *AuthMiddleWare) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := ""
		authHeader := r.Header.Get("Authorization")

		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenStr = parts[1]
			}
		}

		if tokenStr == "" {
			tokenStr = r.URL.Query().Get("token")
		}

		if tokenStr == "" {
			http.Error(w, `{"error": "missing or invalid authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := utils.ValidateToken(tokenStr, m.jwtSecret)
		if err != nil {
			http.Error(w, `{"error": "invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		if m.sessions != nil && claims.ID != "" {
			revoked, err := m.sessions.IsRevoked(r.Context(), claims.ID)
			if err != nil || revoked {
				http.Error(w, `{"error": "session revoked"}`, http.StatusUnauthorized)
				return
			}
			// Best effort, a failed touch must not block the request.
			_ = m.sessions.Touch(r.Context(), claims.UserID, claims.ID)
		}

		// Inject Identity & Role into Context
		ctx := context.WithValue(r.Context(), ContextKeyUserId, claims.UserID)
		ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FlexibleAuth attempts to authenticate the user but proceeds even if no token
// is present. If a valid token is found, it injects the UserID and Role into
// the context. If no token or invalid token, it simply proceeds without
// injecting identity.
func (m *AuthMiddleWare) FlexibleAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := parts[1]
		claims, err := utils.ValidateToken(tokenStr, m.jwtSecret)
		if err != nil {
			// Token invalid/expired - proceed as guest
			next.ServeHTTP(w, r)
			return
		}

		if m.sessions != nil && claims.ID != "" {
			if revoked, err := m.sessions.IsRevoked(r.Context(), claims.ID); err != nil || revoked {
				next.ServeHTTP(w, r)
				return
			}
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserId, claims.UserID)
		ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole wraps RequireAuth-protected handlers with a role check.
func (m *AuthMiddleWare) RequireRole(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(ContextKeyRole).(string)
		if !ok {
			http.Error(w, `{"error": "missing role"}`, http.StatusForbidden)
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				next.ServeHTTP(w, r)
				return
			}
		}
		http.Error(w, `{"error": "insufficient permissions"}`, http.StatusForbidden)
	})
}
