package rbac

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

// Repository provides PostgreSQL backed persistence for roles, permissions
// and their assignment relations.
type Repository struct {
	pool poolIface
}

// NewRepository constructs a repository.
func NewRepository(pool poolIface) *Repository {
	return &Repository{pool: pool}
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, name, description string) (*Role, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO roles (id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING id, name, description, created_at, updated_at`,
		uuid.New(), name, description)
	return scanRole(row)
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id uuid.UUID) (*Role, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// ListRoles returns all roles ordered by name.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, shared.FromPG(err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, shared.FromPG(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.FromPG(err)
	}
	return roles, nil
}

// DeleteRole removes a role by ID.
func (r *Repository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return shared.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound()
	}
	return nil
}

// CreatePermission inserts a new permission.
func (r *Repository) CreatePermission(ctx context.Context, name, description string) (*Permission, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO permissions (id, name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING id, name, description, created_at, updated_at`,
		uuid.New(), name, description)
	return scanPermission(row)
}

// GetPermission fetches a permission by ID.
func (r *Repository) GetPermission(ctx context.Context, id uuid.UUID) (*Permission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at FROM permissions WHERE id = $1`, id)
	return scanPermission(row)
}

// ListPermissions returns all permissions ordered by name.
func (r *Repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM permissions ORDER BY name`)
	if err != nil {
		return nil, shared.FromPG(err)
	}
	defer rows.Close()

	var perms []Permission
	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.Description, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
			return nil, shared.FromPG(err)
		}
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.FromPG(err)
	}
	return perms, nil
}

// DeletePermission removes a permission by ID.
func (r *Repository) DeletePermission(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return shared.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound()
	}
	return nil
}

// AssignRole links a role to a user.
func (r *Repository) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*UserRole, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO user_roles (user_id, role_id, created_at)
		 VALUES ($1, $2, now())
		 RETURNING user_id, role_id, created_at`,
		userID, roleID)

	var ur UserRole
	if err := row.Scan(&ur.UserID, &ur.RoleID, &ur.CreatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &ur, nil
}

// RemoveRole unlinks a role from a user.
func (r *Repository) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return shared.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound()
	}
	return nil
}

// ListUserRoles returns the role assignments for a user.
func (r *Repository) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]UserRole, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, role_id, created_at FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, shared.FromPG(err)
	}
	defer rows.Close()

	var list []UserRole
	for rows.Next() {
		var ur UserRole
		if err := rows.Scan(&ur.UserID, &ur.RoleID, &ur.CreatedAt); err != nil {
			return nil, shared.FromPG(err)
		}
		list = append(list, ur)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.FromPG(err)
	}
	return list, nil
}

// AttachPermission ties a permission to a role.
func (r *Repository) AttachPermission(ctx context.Context, roleID, permissionID uuid.UUID) (*RolePermission, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO role_permissions (role_id, permission_id, created_at)
		 VALUES ($1, $2, now())
		 RETURNING role_id, permission_id, created_at`,
		roleID, permissionID)

	var rp RolePermission
	if err := row.Scan(&rp.RoleID, &rp.PermissionID, &rp.CreatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &rp, nil
}

// DetachPermission removes a permission from a role.
func (r *Repository) DetachPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`, roleID, permissionID)
	if err != nil {
		return shared.FromPG(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound()
	}
	return nil
}

// ListRolePermissions returns the permission assignments for a role.
func (r *Repository) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]RolePermission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role_id, permission_id, created_at FROM role_permissions WHERE role_id = $1`, roleID)
	if err != nil {
		return nil, shared.FromPG(err)
	}
	defer rows.Close()

	var list []RolePermission
	for rows.Next() {
		var rp RolePermission
		if err := rows.Scan(&rp.RoleID, &rp.PermissionID, &rp.CreatedAt); err != nil {
			return nil, shared.FromPG(err)
		}
		list = append(list, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.FromPG(err)
	}
	return list, nil
}

// UserHasPermission walks user_roles -> role_permissions -> permissions in a
// single query, so the answer cannot observe a role without its permissions.
func (r *Repository) UserHasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM user_roles ur
		   JOIN role_permissions rp ON rp.role_id = ur.role_id
		   JOIN permissions p ON p.id = rp.permission_id
		   WHERE ur.user_id = $1 AND p.name = $2
		 )`, userID, permission)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (*Role, error) {
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &role, nil
}

func scanPermission(row rowScanner) (*Permission, error) {
	var perm Permission
	if err := row.Scan(&perm.ID, &perm.Name, &perm.Description, &perm.CreatedAt, &perm.UpdatedAt); err != nil {
		return nil, shared.FromPG(err)
	}
	return &perm, nil
}
