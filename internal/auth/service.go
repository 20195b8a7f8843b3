package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aegis-iam/aegis-iam/internal/observability"
	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// dummyPasswordHash is verified when the username does not exist so that
// unknown and known usernames take the same time to reject. It is not a
// credential; no password hashes to it.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service wraps login business rules: credential verification followed by
// token issuance.
type Service struct {
	repo    Repository
	hasher  *Hasher
	tokens  *TokenManager
	limiter *LoginLimiter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService constructs a Service. limiter and metrics may be nil.
func NewService(repo Repository, hasher *Hasher, tokens *TokenManager, limiter *LoginLimiter, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, limiter: limiter, metrics: metrics, logger: logger}
}

// Login verifies the credentials and issues a session token. All credential
// failures surface as the same Unauthorized error; infrastructure faults
// keep their own kind so they are never mistaken for a bad password.
func (s *Service) Login(ctx context.Context, username, password, ip, ua string) (*User, string, error) {
	if s.limiter != nil && !s.limiter.Allow(ctx, username, ip) {
		s.metrics.ObserveLogin("throttled")
		return nil, "", shared.RateLimited()
	}

	user, lookupErr := s.repo.FindByUsername(ctx, username)

	targetHash := dummyPasswordHash
	if lookupErr == nil {
		targetHash = user.PasswordHash
	} else if shared.KindOf(lookupErr) != shared.KindNotFound {
		s.metrics.ObserveLogin("error")
		return nil, "", shared.Unavailable(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if errors.Is(verifyErr, ErrHashFormat) && lookupErr == nil {
			// A stored digest we cannot parse is an operational defect,
			// not a wrong password.
			s.metrics.ObserveLogin("error")
			return nil, "", shared.Internal(verifyErr)
		}
		valid = false
	}
	if lookupErr != nil || !valid {
		s.metrics.ObserveLogin("denied")
		return nil, "", shared.Unauthorized(lookupErr)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.metrics.ObserveLogin("error")
		return nil, "", shared.Internal(err)
	}

	expiresAt := time.Now().Add(s.tokens.TTL())
	if err := s.repo.CreateSession(ctx, user.ID, expiresAt, ip, ua); err != nil {
		// Audit rows are best effort; the token is already valid.
		if s.logger != nil {
			s.logger.Warn("record session", slog.Any("error", err))
		}
	}

	s.metrics.ObserveLogin("success")
	return user, token, nil
}
