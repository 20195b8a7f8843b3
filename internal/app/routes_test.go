package app

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedRoutesTableIsValid(t *testing.T) {
	require.NoError(t, ValidateRouteTable(ProtectedRoutes()))
}

func TestProtectedRoutesCoverAdminMutations(t *testing.T) {
	want := []RoutePermission{
		{http.MethodPost, "/api/roles/", PermCreateRole},
		{http.MethodDelete, "/api/roles/{id}", PermDeleteRole},
		{http.MethodPost, "/api/permissions/", PermCreatePermission},
		{http.MethodDelete, "/api/permissions/{id}", PermDeletePermission},
		{http.MethodPost, "/api/user_roles/", PermCreateUserRole},
		{http.MethodDelete, "/api/user_roles/", PermDeleteUserRole},
		{http.MethodPost, "/api/role_permissions/", PermCreateRolePermission},
		{http.MethodDelete, "/api/role_permissions/", PermDeleteRolePermission},
	}

	routes := ProtectedRoutes()
	assert.Len(t, routes, len(want), "every admin mutation route needs exactly one row")
	for _, rp := range want {
		assert.Equal(t, rp.Permission, permissionFor(routes, rp.Method, rp.Pattern),
			"%s %s", rp.Method, rp.Pattern)
	}
}

func TestValidateRouteTableRejectsDuplicates(t *testing.T) {
	routes := []RoutePermission{
		{http.MethodPost, "/api/roles/", PermCreateRole},
		{http.MethodPost, "/api/roles/", PermDeleteRole},
	}
	assert.Error(t, ValidateRouteTable(routes))
}

func TestValidateRouteTableRejectsBlankEntries(t *testing.T) {
	assert.Error(t, ValidateRouteTable([]RoutePermission{{"", "/api/roles/", PermCreateRole}}))
	assert.Error(t, ValidateRouteTable([]RoutePermission{{http.MethodPost, "", PermCreateRole}}))
	assert.Error(t, ValidateRouteTable([]RoutePermission{{http.MethodPost, "/api/roles/", ""}}))
}

func TestPermissionForUnknownRoute(t *testing.T) {
	assert.Empty(t, permissionFor(ProtectedRoutes(), http.MethodGet, "/api/roles/"),
		"read routes are token-only")
}
