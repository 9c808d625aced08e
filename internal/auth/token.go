package auth

import (
	"errors"
	"time"
)

// TokenClass distinguishes access tokens (authorize protected operations)
// from refresh tokens (authorize only minting a new access token).
type TokenClass string

const (
	TokenClassAccess  TokenClass = "access"
	TokenClassRefresh TokenClass = "refresh"
)

// Token validation failures. Handlers collapse all three into a single 401
// so a client cannot learn which check rejected a forged token; the
// distinction exists for logging.
var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrExpiredToken    = errors.New("token has expired")
	ErrWrongTokenClass = errors.New("wrong token class")
)

// Clock supplies the current time to token issuance and validation, so
// expiry is testable without wall-clock waits.
type Clock func() time.Time

// TokenService issues and validates self-contained signed tokens. Tokens
// carry the subject user ID, issued-at, expiry and a class tag; no
// server-side state is consulted, which means tokens cannot be revoked
// before they expire.
//
// Validate checks in fixed order: authenticity first, then expiry, then
// class. Implementations are pure functions of (token, key, clock) and are
// safe for concurrent use.
type TokenService interface {
	IssueAccessToken(userID int64) (token string, expiresAt time.Time, err error)
	IssueRefreshToken(userID int64) (token string, expiresAt time.Time, err error)
	Validate(tokenString string, expected TokenClass) (userID int64, err error)
}
