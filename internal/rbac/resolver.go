package rbac

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// DefaultResolveTimeout bounds a single permission-resolution query.
const DefaultResolveTimeout = 3 * time.Second

// PermissionStore answers membership queries against the role/permission
// join graph.
type PermissionStore interface {
	UserHasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

// Resolver answers "does this user hold this permission" against live data.
// Results are never cached: role and permission edits take effect on the
// next check without reissuing tokens.
type Resolver struct {
	store   PermissionStore
	timeout time.Duration
}

// NewResolver constructs a Resolver; a non-positive timeout falls back to
// DefaultResolveTimeout.
func NewResolver(store PermissionStore, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Resolver{store: store, timeout: timeout}
}

// HasPermission reports whether the user holds the named permission.
// A data-layer fault, including a timeout, is returned as an unavailable
// error so callers cannot mistake it for a deny.
func (r *Resolver) HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allowed, err := r.store.UserHasPermission(ctx, userID, permission)
	if err != nil {
		return false, shared.Unavailable(err)
	}
	return allowed, nil
}
