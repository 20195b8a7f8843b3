package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-iam/aegis-iam/internal/auth"
	"github.com/aegis-iam/aegis-iam/internal/shared"
)

type stubRepo struct {
	user       *auth.User
	lookupErr  error
	sessionErr error
	sessions   int
}

func (s *stubRepo) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if s.user == nil || s.user.Username != username {
		return nil, shared.NotFound()
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	if s.sessionErr != nil {
		return s.sessionErr
	}
	s.sessions++
	return nil
}

func (s *stubRepo) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, repo *stubRepo, limiter *auth.LoginLimiter) *auth.Service {
	t.Helper()
	hasher, err := auth.NewHasher(testArgon2Params())
	require.NoError(t, err)
	return auth.NewService(repo, hasher, newTestTokenManager(t, time.Hour), limiter, nil, discardLogger())
}

func storedUser(t *testing.T, username, password string) *auth.User {
	t.Helper()
	hasher, err := auth.NewHasher(testArgon2Params())
	require.NoError(t, err)
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	return &auth.User{ID: uuid.New(), Username: username, Email: username + "@test.local", PasswordHash: hash}
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: storedUser(t, "alice", "opensesame1")}
	svc := newTestService(t, repo, nil)

	user, token, err := svc.Login(context.Background(), "alice", "opensesame1", "203.0.113.9", "go-test")
	require.NoError(t, err)
	assert.Equal(t, repo.user.ID, user.ID)
	assert.Equal(t, 1, repo.sessions, "a successful login records a session audit row")

	tm := newTestTokenManager(t, time.Hour)
	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, repo.user.ID, claims.Subject)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubRepo{user: storedUser(t, "alice", "opensesame1")}
	svc := newTestService(t, repo, nil)

	_, _, err := svc.Login(context.Background(), "alice", "wrong", "", "")
	assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
	assert.Equal(t, 0, repo.sessions)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, nil)

	_, _, err := svc.Login(context.Background(), "nobody", "whatever", "", "")
	assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
	assert.Equal(t, "invalid or missing credentials", shared.MessageOf(err),
		"an unknown username must be indistinguishable from a wrong password")
}

func TestLoginLookupFault(t *testing.T) {
	repo := &stubRepo{lookupErr: shared.Internal(errors.New("connection refused"))}
	svc := newTestService(t, repo, nil)

	_, _, err := svc.Login(context.Background(), "alice", "opensesame1", "", "")
	assert.Equal(t, shared.KindUnavailable, shared.KindOf(err),
		"a storage fault must never surface as a credential failure")
}

func TestLoginMalformedStoredDigest(t *testing.T) {
	repo := &stubRepo{user: &auth.User{ID: uuid.New(), Username: "alice", PasswordHash: "bcrypt-leftover"}}
	svc := newTestService(t, repo, nil)

	_, _, err := svc.Login(context.Background(), "alice", "opensesame1", "", "")
	assert.Equal(t, shared.KindInternal, shared.KindOf(err),
		"an unparseable stored digest is an operational defect, not a wrong password")
}

func TestLoginRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := auth.NewLoginLimiter(client, discardLogger(), 2, time.Minute)

	repo := &stubRepo{user: storedUser(t, "alice", "opensesame1")}
	svc := newTestService(t, repo, limiter)

	for i := 0; i < 2; i++ {
		_, _, err := svc.Login(context.Background(), "alice", "wrong", "203.0.113.9", "")
		assert.Equal(t, shared.KindUnauthorized, shared.KindOf(err))
	}

	_, _, err := svc.Login(context.Background(), "alice", "opensesame1", "203.0.113.9", "")
	assert.Equal(t, shared.KindRateLimited, shared.KindOf(err),
		"the throttle applies even when the credentials are correct")
}

func TestLoginSessionWriteFailureIsNotFatal(t *testing.T) {
	repo := &stubRepo{
		user:       storedUser(t, "alice", "opensesame1"),
		sessionErr: errors.New("sessions table missing"),
	}
	svc := newTestService(t, repo, nil)

	_, token, err := svc.Login(context.Background(), "alice", "opensesame1", "", "")
	require.NoError(t, err, "audit rows are best effort")
	assert.NotEmpty(t, token)
}
