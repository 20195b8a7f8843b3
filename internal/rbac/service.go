package rbac

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// RepositoryPort defines data access methods for RBAC management.
type RepositoryPort interface {
	CreateRole(ctx context.Context, name, description string) (*Role, error)
	GetRole(ctx context.Context, id uuid.UUID) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	DeleteRole(ctx context.Context, id uuid.UUID) error

	CreatePermission(ctx context.Context, name, description string) (*Permission, error)
	GetPermission(ctx context.Context, id uuid.UUID) (*Permission, error)
	ListPermissions(ctx context.Context) ([]Permission, error)
	DeletePermission(ctx context.Context, id uuid.UUID) error

	AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error)
	RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error
	ListUserRoles(ctx context.Context, userID uuid.UUID) ([]UserRole, error)

	AttachPermission(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error)
	DetachPermission(ctx context.Context, roleID, permissionID uuid.UUID) error
	ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]RolePermission, error)
}

// Service orchestrates RBAC management operations.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, name, description string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.BadRequest("role name required")
	}
	return s.repo.CreateRole(ctx, name, strings.TrimSpace(description))
}

// GetRole fetches a role by ID.
func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (*Role, error) {
	return s.repo.GetRole(ctx, id)
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// DeleteRole removes a role.
func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteRole(ctx, id)
}

// CreatePermission inserts a new permission.
func (s *Service) CreatePermission(ctx context.Context, name, description string) (*Permission, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.BadRequest("permission name required")
	}
	return s.repo.CreatePermission(ctx, name, strings.TrimSpace(description))
}

// GetPermission fetches a permission by ID.
func (s *Service) GetPermission(ctx context.Context, id uuid.UUID) (*Permission, error) {
	return s.repo.GetPermission(ctx, id)
}

// ListPermissions returns all permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// DeletePermission removes a permission.
func (s *Service) DeletePermission(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePermission(ctx, id)
}

// AssignRole assigns a role to the given user.
func (s *Service) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error) {
	return s.repo.AssignRole(ctx, userID, roleID)
}

// RemoveRole removes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return s.repo.RemoveRole(ctx, userID, roleID)
}

// ListUserRoles returns the role assignments for a user.
func (s *Service) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]UserRole, error) {
	return s.repo.ListUserRoles(ctx, userID)
}

// AttachPermission ties a permission to a role.
func (s *Service) AttachPermission(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error) {
	return s.repo.AttachPermission(ctx, roleID, permissionID)
}

// DetachPermission removes a permission from a role.
func (s *Service) DetachPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return s.repo.DetachPermission(ctx, roleID, permissionID)
}

// ListRolePermissions returns the permission assignments for a role.
func (s *Service) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]RolePermission, error) {
	return s.repo.ListRolePermissions(ctx, roleID)
}
