package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, username, email, passwordHash string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// PasswordHasher derives storable digests from plaintext passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service handles user account business logic.
type Service struct {
	repo   RepositoryPort
	hasher PasswordHasher
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Create hashes the password and stores a new account.
func (s *Service) Create(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, shared.BadRequest("username and email required")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, shared.Internal(err)
	}
	return s.repo.CreateUser(ctx, username, email, hash)
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// Update changes account fields; a non-empty password is re-hashed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, username, email, password string) (*User, error) {
	var hash string
	if password != "" {
		var err error
		hash, err = s.hasher.Hash(password)
		if err != nil {
			return nil, shared.Internal(err)
		}
	}
	return s.repo.UpdateUser(ctx, id, strings.TrimSpace(username), strings.TrimSpace(email), hash)
}

// Delete removes a user account.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteUser(ctx, id)
}
