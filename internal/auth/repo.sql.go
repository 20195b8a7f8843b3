package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// poolIface is the subset of pgxpool.Pool the repository uses.
type poolIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	CreateSession(ctx context.Context, userID uuid.UUID, expiresAt time.Time, ip, ua string) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool poolIface
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool poolIface) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches a credential record by login identifier.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users WHERE username = $1`, username)

	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &user, nil
}

// CreateSession records an issued token for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, userID uuid.UUID, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, ip, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		uuid.New(), userID, expiresAt.UTC(), ip, ua)
	if err != nil {
		return shared.FromPG(err)
	}
	return nil
}

// PurgeExpiredSessions deletes audit rows for tokens past expiry adding a
// day of slack, and reports how many were removed.
func (r *PGRepository) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at < now() - interval '1 day'`)
	if err != nil {
		return 0, shared.FromPG(err)
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
