package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aegis-iam/aegis-iam/internal/auth"
	"github.com/aegis-iam/aegis-iam/internal/observability"
	"github.com/aegis-iam/aegis-iam/internal/rbac"
	"github.com/aegis-iam/aegis-iam/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	Metrics      *observability.Metrics
	AuthHandler  *auth.Handler
	UsersHandler *users.Handler
	RBACHandler  *rbac.Handler
	Gate         auth.Middleware
}

// NewRouter constructs the chi.Router. Login and registration are open;
// everything else under /api sits behind the authentication gate, with the
// administrative mutation routes additionally gated by the closed
// route-to-permission table.
func NewRouter(params RouterParams) (http.Handler, error) {
	routes := ProtectedRoutes()
	if err := ValidateRouteTable(routes); err != nil {
		return nil, err
	}

	// require returns the permission middleware for a table entry, or a
	// passthrough when the route is exempt. Admin routes wired below must
	// reference the table so a missing row is caught by the table tests.
	require := func(method, pattern string) func(http.Handler) http.Handler {
		perm := permissionFor(routes, method, pattern)
		if perm == "" {
			return func(next http.Handler) http.Handler { return next }
		}
		return params.Gate.RequirePermission(perm)
	}

	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: params.Logger, Config: params.Config}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)
	r.Use(params.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.Gate.RequireToken)

			r.Route("/users", params.UsersHandler.MountRoutes)

			r.Route("/roles", func(r chi.Router) {
				r.With(require(http.MethodPost, "/api/roles/")).Post("/", params.RBACHandler.CreateRole)
				r.Get("/", params.RBACHandler.ListRoles)
				r.Get("/{id}", params.RBACHandler.GetRole)
				r.With(require(http.MethodDelete, "/api/roles/{id}")).Delete("/{id}", params.RBACHandler.DeleteRole)
			})

			r.Route("/permissions", func(r chi.Router) {
				r.With(require(http.MethodPost, "/api/permissions/")).Post("/", params.RBACHandler.CreatePermission)
				r.Get("/", params.RBACHandler.ListPermissions)
				r.Get("/{id}", params.RBACHandler.GetPermission)
				r.With(require(http.MethodDelete, "/api/permissions/{id}")).Delete("/{id}", params.RBACHandler.DeletePermission)
			})

			r.Route("/user_roles", func(r chi.Router) {
				r.With(require(http.MethodPost, "/api/user_roles/")).Post("/", params.RBACHandler.AssignRole)
				r.With(require(http.MethodDelete, "/api/user_roles/")).Delete("/", params.RBACHandler.RemoveRole)
				r.Get("/{user_id}", params.RBACHandler.ListUserRoles)
			})

			r.Route("/role_permissions", func(r chi.Router) {
				r.With(require(http.MethodPost, "/api/role_permissions/")).Post("/", params.RBACHandler.AttachPermission)
				r.With(require(http.MethodDelete, "/api/role_permissions/")).Delete("/", params.RBACHandler.DetachPermission)
				r.Get("/{role_id}", params.RBACHandler.ListRolePermissions)
			})
		})
	})

	return r, nil
}
