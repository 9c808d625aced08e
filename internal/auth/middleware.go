package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"accountsvc/internal/httputil"
	"accountsvc/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// UserIDContextKey holds the authenticated subject's user ID.
const UserIDContextKey ContextKey = "user_id"

// Middleware gates protected routes behind access-token validation.
type Middleware struct {
	tokens TokenService
}

func NewMiddleware(tokens TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// RequireAuth validates the bearer access token and puts the subject's user
// ID into the request context. Every failure is a plain 401: which check
// rejected the token (signature, expiry, class) is logged but never
// revealed to the client.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, ok := BearerToken(r)
		if !ok {
			httputil.RespondErrorWithCode(w, "missing or malformed authorization header", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		userID, err := m.tokens.Validate(token, TokenClassAccess)
		if err != nil {
			switch {
			case errors.Is(err, ErrExpiredToken):
				logger.Warn("access token rejected: expired")
			case errors.Is(err, ErrWrongTokenClass):
				logger.Warn("access token rejected: wrong class")
			default:
				logger.Warn("access token rejected: malformed")
			}
			httputil.RespondErrorWithCode(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// UserIDFromContext extracts the authenticated user ID from the request
// context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok
}
