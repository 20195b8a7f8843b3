package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token validation failures. Both collapse to the same client-visible
// Unauthorized response; they are distinguished for logging only.
var (
	// ErrTokenInvalid covers undecodable tokens and signature mismatches.
	// The two cases are deliberately indistinguishable to avoid giving an
	// attacker an oracle.
	ErrTokenInvalid = errors.New("auth: invalid token")
	// ErrTokenExpired indicates a well-signed token past its expiry.
	ErrTokenExpired = errors.New("auth: expired token")
)

// Claims carries the validated content of a session token.
type Claims struct {
	Subject   uuid.UUID
	ExpiresAt time.Time
}

// TokenManager issues and validates HS256-signed session tokens. It holds
// no per-token state: validation is a pure function of token, secret and
// clock, which means a token cannot be revoked before it expires. Operators
// who need faster revocation must shorten the TTL.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager validates the secret and TTL and returns a TokenManager.
func NewTokenManager(secret []byte, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, errors.New("auth: token secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenManager{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration { return tm.ttl }

// Issue creates a signed token with sub and exp claims for the subject.
func (tm *TokenManager) Issue(subject uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature before interpreting any claims, then
// checks expiry, and finally parses the subject.
func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	var claims jwt.RegisteredClaims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &Claims{Subject: subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}
