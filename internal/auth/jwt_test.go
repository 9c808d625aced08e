package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecretKey = []byte("0123456789abcdef0123456789abcdef")

// fakeClock drives token issuance and validation without wall-clock waits.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newJWTServiceForTest(clock *fakeClock) *JWTService {
	return NewJWTService(testSecretKey, 15*time.Minute, 7*24*time.Hour, clock.Now)
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)

	token, expiresAt, err := svc.IssueAccessToken(42)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(15*time.Minute), expiresAt)

	userID, err := svc.Validate(token, TokenClassAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestJWTService_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)

	token, _, err := svc.IssueAccessToken(42)
	require.NoError(t, err)

	// Just before expiry the token is still valid.
	clock.Advance(15*time.Minute - time.Second)
	_, err = svc.Validate(token, TokenClassAccess)
	require.NoError(t, err)

	// At the expiry instant the token must be rejected.
	clock.Advance(time.Second)
	_, err = svc.Validate(token, TokenClassAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_WrongClass(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)

	access, _, err := svc.IssueAccessToken(7)
	require.NoError(t, err)
	refresh, _, err := svc.IssueRefreshToken(7)
	require.NoError(t, err)

	_, err = svc.Validate(access, TokenClassRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenClass)

	_, err = svc.Validate(refresh, TokenClassAccess)
	assert.ErrorIs(t, err, ErrWrongTokenClass)
}

func TestJWTService_RefreshTokenLivesLonger(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)

	refresh, _, err := svc.IssueRefreshToken(7)
	require.NoError(t, err)

	// Long after the access TTL, the refresh token still validates.
	clock.Advance(24 * time.Hour)
	userID, err := svc.Validate(refresh, TokenClassRefresh)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
}

func TestJWTService_TamperedSignature(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)

	token, _, err := svc.IssueAccessToken(42)
	require.NoError(t, err)

	tampered := flipLastChar(token)
	require.NotEqual(t, token, tampered)

	_, err = svc.Validate(tampered, TokenClassAccess)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestJWTService_TamperedPayload(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)

	token, _, err := svc.IssueAccessToken(42)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = flipLastChar(parts[1])

	_, err = svc.Validate(strings.Join(parts, "."), TokenClassAccess)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestJWTService_DifferentKey(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)
	other := NewJWTService([]byte("another-secret-key-of-32-bytes!!"), 15*time.Minute, 7*24*time.Hour, clock.Now)

	token, _, err := other.IssueAccessToken(42)
	require.NoError(t, err)

	_, err = svc.Validate(token, TokenClassAccess)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestJWTService_Garbage(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := newJWTServiceForTest(clock)

	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Validate(tokenString, TokenClassAccess)
		assert.ErrorIs(t, err, ErrMalformedToken)
	}
}

// flipLastChar replaces the final character with a different base64url
// character, producing a parseable but unauthentic token.
func flipLastChar(s string) string {
	last := s[len(s)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	return s[:len(s)-1] + string(replacement)
}
