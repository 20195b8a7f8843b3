package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-iam/aegis-iam/internal/auth"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokenManager(t *testing.T, ttl time.Duration) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(testSecret, ttl)
	require.NoError(t, err)
	return tm
}

// signToken builds a token outside the manager so tests can control every
// claim and the signing method.
func signToken(t *testing.T, secret []byte, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	var key any = secret
	if method == jwt.SigningMethodNone {
		key = jwt.UnsafeAllowNoneSignatureType
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestTokenManagerIssueValidate(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	subject := uuid.New()

	token, err := tm.Issue(subject)
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestTokenManagerExpired(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	token := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	_, err := tm.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestTokenManagerRejectsWrongSecret(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	token := signToken(t, []byte("another-secret-another-secret-32"), jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err := tm.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenManagerRejectsTampering(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	token, err := tm.Issue(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Swap the payload for one claiming a different subject; the signature
	// no longer matches.
	forged := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	forgedParts := strings.Split(forged, ".")
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = tm.Validate(tampered)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenManagerRejectsUnsignedAlgorithm(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	token := signToken(t, nil, jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err := tm.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenManagerRejectsMissingExpiry(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	token := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: uuid.NewString(),
	})

	_, err := tm.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenManagerRejectsNonUUIDSubject(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	token := signToken(t, testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err := tm.Validate(token)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenManagerRejectsGarbage(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := tm.Validate(token)
		assert.ErrorIs(t, err, auth.ErrTokenInvalid, "token %q", token)
	}
}

func TestNewTokenManagerValidation(t *testing.T) {
	_, err := auth.NewTokenManager([]byte("short"), time.Hour)
	assert.Error(t, err, "secret below 32 bytes must be rejected")

	_, err = auth.NewTokenManager(testSecret, 0)
	assert.Error(t, err, "non-positive ttl must be rejected")
}
