package shared

import (
	"context"

	"github.com/google/uuid"
)

// Identity describes the authenticated principal attached to a request.
type Identity struct {
	UserID    uuid.UUID
	ExpiresAt int64
}

type identityContextKey struct{}

// ContextWithIdentity stores the validated identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context; nil when the
// request never passed the authentication gate.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
