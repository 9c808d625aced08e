package auth

import (
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

// PasetoService issues and validates PASETO v4.local tokens (symmetric
// encryption with XChaCha20-Poly1305). Claims match the JWT implementation,
// so the two schemes are interchangeable behind TokenService.
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	accessTTL    time.Duration
	refreshTTL   time.Duration
	now          Clock
	parser       paseto.Parser
}

func NewPasetoService(symmetricKey []byte, accessTTL, refreshTTL time.Duration, now Clock) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{
		symmetricKey: key,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		now:          now,
		// The expiry rule is applied manually against the injected clock
		// instead of the library's wall-clock default.
		parser: paseto.NewParserWithoutExpiryCheck(),
	}, nil
}

func (s *PasetoService) IssueAccessToken(userID int64) (string, time.Time, error) {
	return s.issue(userID, TokenClassAccess, s.accessTTL)
}

func (s *PasetoService) IssueRefreshToken(userID int64) (string, time.Time, error) {
	return s.issue(userID, TokenClassRefresh, s.refreshTTL)
}

func (s *PasetoService) issue(userID int64, class TokenClass, ttl time.Duration) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(ttl)

	token := paseto.NewToken()
	token.SetSubject(strconv.FormatInt(userID, 10))
	token.SetIssuedAt(issuedAt)
	token.SetExpiration(expiresAt)
	token.SetJti(uuid.NewString())
	token.SetString("type", string(class))

	return token.V4Encrypt(s.symmetricKey, nil), expiresAt, nil
}

// Validate decrypts the token (any tampering fails authentication here),
// then checks expiry against the injected clock, then the class tag.
func (s *PasetoService) Validate(tokenString string, expected TokenClass) (int64, error) {
	token, err := s.parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return 0, ErrMalformedToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return 0, ErrMalformedToken
	}
	if !s.now().Before(expiresAt) {
		return 0, ErrExpiredToken
	}

	class, err := token.GetString("type")
	if err != nil {
		return 0, ErrMalformedToken
	}
	if class != string(expected) {
		return 0, ErrWrongTokenClass
	}

	subject, err := token.GetSubject()
	if err != nil {
		return 0, ErrMalformedToken
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, ErrMalformedToken
	}

	return userID, nil
}
