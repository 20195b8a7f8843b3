package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// poolIface is the subset of pgxpool.Pool the repository uses.
type poolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool poolIface
}

// NewRepository constructs a repository.
func NewRepository(pool poolIface) *Repository {
	return &Repository{pool: pool}
}

// CreateUser inserts a new account with a pre-hashed password.
func (r *Repository) CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 RETURNING id, username, email, created_at, updated_at`,
		uuid.New(), username, email, passwordHash)

	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &user, nil
}

// GetUser fetches a user by ID.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, username, email, created_at, updated_at FROM users WHERE id = $1`, id)

	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &user, nil
}

// ListUsers returns all users ordered by creation time.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, email, created_at, updated_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, shared.FromPG(err)
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, shared.FromPG(err)
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.FromPG(err)
	}
	return list, nil
}

// UpdateUser applies non-empty fields to the account. An empty passwordHash
// leaves the stored digest untouched.
func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, username, email, passwordHash string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE users SET
		   username = COALESCE(NULLIF($2, ''), username),
		   email = COALESCE(NULLIF($3, ''), email),
		   password_hash = COALESCE(NULLIF($4, ''), password_hash),
		   updated_at = now()
		 WHERE id = $1
		 RETURNING id, username, email, created_at, updated_at`,
		id, username, email, passwordHash)

	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &user, nil
}

// DeleteUser removes a user by ID. Returns NotFound if nothing was deleted.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return shared.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound()
	}
	return nil
}
