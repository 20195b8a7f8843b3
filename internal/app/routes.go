package app

import (
	"fmt"
	"net/http"
)

// Permissions gating the administrative mutation routes. Every other
// authenticated route requires only a valid token.
const (
	PermCreateRole           = "admin.create_role"
	PermDeleteRole           = "admin.delete_role"
	PermCreatePermission     = "admin.create_permission"
	PermDeletePermission     = "admin.delete_permission"
	PermCreateUserRole       = "admin.create_user_role"
	PermDeleteUserRole       = "admin.delete_user_role"
	PermCreateRolePermission = "admin.create_role_permission"
	PermDeleteRolePermission = "admin.delete_role_permission"
)

// RoutePermission binds one route to the permission it requires.
type RoutePermission struct {
	Method     string
	Pattern    string
	Permission string
}

// ProtectedRoutes is the closed route-to-permission table. The router
// consults only this table when wiring permission checks; adding a new
// protected route means adding a row here.
func ProtectedRoutes() []RoutePermission {
	return []RoutePermission{
		{http.MethodPost, "/api/roles/", PermCreateRole},
		{http.MethodDelete, "/api/roles/{id}", PermDeleteRole},
		{http.MethodPost, "/api/permissions/", PermCreatePermission},
		{http.MethodDelete, "/api/permissions/{id}", PermDeletePermission},
		{http.MethodPost, "/api/user_roles/", PermCreateUserRole},
		{http.MethodDelete, "/api/user_roles/", PermDeleteUserRole},
		{http.MethodPost, "/api/role_permissions/", PermCreateRolePermission},
		{http.MethodDelete, "/api/role_permissions/", PermDeleteRolePermission},
	}
}

// ValidateRouteTable rejects empty or duplicate entries so a wiring mistake
// fails at startup instead of silently leaving a route unguarded.
func ValidateRouteTable(routes []RoutePermission) error {
	seen := make(map[string]string, len(routes))
	for _, rp := range routes {
		if rp.Method == "" || rp.Pattern == "" {
			return fmt.Errorf("route table entry missing method or pattern: %+v", rp)
		}
		if rp.Permission == "" {
			return fmt.Errorf("route %s %s has no permission", rp.Method, rp.Pattern)
		}
		key := rp.Method + " " + rp.Pattern
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("route %s mapped to both %q and %q", key, prev, rp.Permission)
		}
		seen[key] = rp.Permission
	}
	return nil
}

// permissionFor returns the required permission for a route, or "" when the
// route is permission-exempt.
func permissionFor(routes []RoutePermission, method, pattern string) string {
	for _, rp := range routes {
		if rp.Method == method && rp.Pattern == pattern {
			return rp.Permission
		}
	}
	return ""
}
