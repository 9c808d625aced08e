package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims are the claims carried by both token classes. The class tag
// travels in the "type" claim.
type jwtClaims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// JWTService issues and validates HS256-signed JWTs.
type JWTService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        Clock
	parser     *jwt.Parser
}

func NewJWTService(secretKey []byte, accessTTL, refreshTTL time.Duration, now Clock) *JWTService {
	return &JWTService{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}
}

func (s *JWTService) IssueAccessToken(userID int64) (string, time.Time, error) {
	return s.issue(userID, TokenClassAccess, s.accessTTL)
}

func (s *JWTService) IssueRefreshToken(userID int64) (string, time.Time, error) {
	return s.issue(userID, TokenClassRefresh, s.refreshTTL)
}

func (s *JWTService) issue(userID int64, class TokenClass, ttl time.Duration) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(ttl)

	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
		Type: string(class),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, expiresAt, nil
}

// Validate verifies the signature, then expiry, then the class tag, and
// returns the subject user ID. The parser rejects tampered tokens before any
// claim is inspected.
func (s *JWTService) Validate(tokenString string, expected TokenClass) (int64, error) {
	claims := &jwtClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrMalformedToken
	}
	if !token.Valid {
		return 0, ErrMalformedToken
	}

	if claims.Type != string(expected) {
		return 0, ErrWrongTokenClass
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrMalformedToken
	}

	return userID, nil
}
