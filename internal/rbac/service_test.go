package rbac_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-iam/aegis-iam/internal/rbac"
	"github.com/aegis-iam/aegis-iam/internal/shared"
)

type mockRepository struct {
	roles       map[uuid.UUID]*rbac.Role
	permissions map[uuid.UUID]*rbac.Permission
	userRoles   map[uuid.UUID][]rbac.UserRole
	rolePerms   map[uuid.UUID][]rbac.RolePermission
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		roles:       make(map[uuid.UUID]*rbac.Role),
		permissions: make(map[uuid.UUID]*rbac.Permission),
		userRoles:   make(map[uuid.UUID][]rbac.UserRole),
		rolePerms:   make(map[uuid.UUID][]rbac.RolePermission),
	}
}

func (m *mockRepository) CreateRole(ctx context.Context, name, description string) (*rbac.Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return nil, shared.Conflict("duplicate entry")
		}
	}
	role := &rbac.Role{ID: uuid.New(), Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.roles[role.ID] = role
	return role, nil
}

func (m *mockRepository) GetRole(ctx context.Context, id uuid.UUID) (*rbac.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, shared.NotFound()
	}
	return role, nil
}

func (m *mockRepository) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	var list []rbac.Role
	for _, r := range m.roles {
		list = append(list, *r)
	}
	return list, nil
}

func (m *mockRepository) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.roles[id]; !ok {
		return shared.NotFound()
	}
	delete(m.roles, id)
	return nil
}

func (m *mockRepository) CreatePermission(ctx context.Context, name, description string) (*rbac.Permission, error) {
	for _, p := range m.permissions {
		if p.Name == name {
			return nil, shared.Conflict("duplicate entry")
		}
	}
	perm := &rbac.Permission{ID: uuid.New(), Name: name, Description: description, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.permissions[perm.ID] = perm
	return perm, nil
}

func (m *mockRepository) GetPermission(ctx context.Context, id uuid.UUID) (*rbac.Permission, error) {
	perm, ok := m.permissions[id]
	if !ok {
		return nil, shared.NotFound()
	}
	return perm, nil
}

func (m *mockRepository) ListPermissions(ctx context.Context) ([]rbac.Permission, error) {
	var list []rbac.Permission
	for _, p := range m.permissions {
		list = append(list, *p)
	}
	return list, nil
}

func (m *mockRepository) DeletePermission(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.permissions[id]; !ok {
		return shared.NotFound()
	}
	delete(m.permissions, id)
	return nil
}

func (m *mockRepository) AssignRole(ctx context.Context, userID, roleID uuid.UUID) (*rbac.UserRole, error) {
	for _, ur := range m.userRoles[userID] {
		if ur.RoleID == roleID {
			return nil, shared.Conflict("duplicate entry")
		}
	}
	ur := rbac.UserRole{UserID: userID, RoleID: roleID, CreatedAt: time.Now()}
	m.userRoles[userID] = append(m.userRoles[userID], ur)
	return &ur, nil
}

func (m *mockRepository) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	list := m.userRoles[userID]
	for i, ur := range list {
		if ur.RoleID == roleID {
			m.userRoles[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return shared.NotFound()
}

func (m *mockRepository) ListUserRoles(ctx context.Context, userID uuid.UUID) ([]rbac.UserRole, error) {
	return m.userRoles[userID], nil
}

func (m *mockRepository) AttachPermission(ctx context.Context, roleID, permissionID uuid.UUID) (*rbac.RolePermission, error) {
	for _, rp := range m.rolePerms[roleID] {
		if rp.PermissionID == permissionID {
			return nil, shared.Conflict("duplicate entry")
		}
	}
	rp := rbac.RolePermission{RoleID: roleID, PermissionID: permissionID, CreatedAt: time.Now()}
	m.rolePerms[roleID] = append(m.rolePerms[roleID], rp)
	return &rp, nil
}

func (m *mockRepository) DetachPermission(ctx context.Context, roleID, permissionID uuid.UUID) error {
	list := m.rolePerms[roleID]
	for i, rp := range list {
		if rp.PermissionID == permissionID {
			m.rolePerms[roleID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return shared.NotFound()
}

func (m *mockRepository) ListRolePermissions(ctx context.Context, roleID uuid.UUID) ([]rbac.RolePermission, error) {
	return m.rolePerms[roleID], nil
}

func TestServiceCreateRoleTrimsName(t *testing.T) {
	svc := rbac.NewService(newMockRepository())

	role, err := svc.CreateRole(context.Background(), "  editor  ", "  trims too  ")
	require.NoError(t, err)
	assert.Equal(t, "editor", role.Name)
	assert.Equal(t, "trims too", role.Description)
}

func TestServiceCreateRoleEmptyName(t *testing.T) {
	svc := rbac.NewService(newMockRepository())

	for _, name := range []string{"", "   "} {
		_, err := svc.CreateRole(context.Background(), name, "desc")
		assert.Equal(t, shared.KindBadRequest, shared.KindOf(err), "name %q", name)
	}
}

func TestServiceCreatePermissionEmptyName(t *testing.T) {
	svc := rbac.NewService(newMockRepository())

	_, err := svc.CreatePermission(context.Background(), "  ", "desc")
	assert.Equal(t, shared.KindBadRequest, shared.KindOf(err))
}

func TestServiceRoleLifecycle(t *testing.T) {
	svc := rbac.NewService(newMockRepository())
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, "auditor", "")
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, "auditor", "")
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	got, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, role.ID, got.ID)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	err = svc.DeleteRole(ctx, role.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestServiceAssignments(t *testing.T) {
	svc := rbac.NewService(newMockRepository())
	ctx := context.Background()
	userID := uuid.New()

	role, err := svc.CreateRole(ctx, "editor", "")
	require.NoError(t, err)
	perm, err := svc.CreatePermission(ctx, "admin.create_role", "")
	require.NoError(t, err)

	_, err = svc.AssignRole(ctx, userID, role.ID)
	require.NoError(t, err)
	_, err = svc.AssignRole(ctx, userID, role.ID)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err), "re-assignment is a conflict")

	assigned, err := svc.ListUserRoles(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, assigned, 1)

	_, err = svc.AttachPermission(ctx, role.ID, perm.ID)
	require.NoError(t, err)

	granted, err := svc.ListRolePermissions(ctx, role.ID)
	require.NoError(t, err)
	assert.Len(t, granted, 1)

	require.NoError(t, svc.DetachPermission(ctx, role.ID, perm.ID))
	err = svc.DetachPermission(ctx, role.ID, perm.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))

	require.NoError(t, svc.RemoveRole(ctx, userID, role.ID))
	err = svc.RemoveRole(ctx, userID, role.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}
