package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aegis-iam/aegis-iam/internal/observability"
	"github.com/aegis-iam/aegis-iam/internal/platform/httpx"
	"github.com/aegis-iam/aegis-iam/internal/shared"
)

// PermissionResolver decides whether a subject holds a named permission.
// An error means the answer is unknown; it must never be read as deny.
type PermissionResolver interface {
	HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

// Middleware is the per-request authentication gate: bearer extraction,
// token validation, then an optional permission check against the resolver.
type Middleware struct {
	Tokens   *TokenManager
	Resolver PermissionResolver
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// RequireToken validates the bearer token and attaches the identity to the
// request context. Every validation failure maps to the same 401 response.
func (m Middleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			httpx.Error(w, shared.Unauthorized(nil))
			return
		}

		claims, err := m.Tokens.Validate(token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Info("token rejected", slog.Any("error", err), slog.String("path", r.URL.Path))
			}
			httpx.Error(w, shared.Unauthorized(err))
			return
		}

		identity := &shared.Identity{UserID: claims.Subject, ExpiresAt: claims.ExpiresAt.Unix()}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates a route behind a named permission. It assumes
// RequireToken already ran; a missing identity is rejected, a resolver
// fault is surfaced as unavailable, and absence of a grant is a deny.
func (m Middleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.Error(w, shared.Unauthorized(nil))
				return
			}

			allowed, err := m.Resolver.HasPermission(r.Context(), identity.UserID, permission)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("permission resolution failed",
						slog.String("permission", permission),
						slog.String("user_id", identity.UserID.String()),
						slog.Any("error", err))
				}
				m.Metrics.ObserveAuthzDecision("unavailable")
				httpx.Error(w, shared.Unavailable(err))
				return
			}
			if !allowed {
				m.Metrics.ObserveAuthzDecision("deny")
				httpx.Error(w, shared.Forbidden())
				return
			}

			m.Metrics.ObserveAuthzDecision("allow")
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}
