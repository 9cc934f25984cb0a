package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/bodega-inventory/internal"
	"github.com/frahmantamala/bodega-inventory/internal/transport"
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

// RBACAuthorization gates routes on the caller loaded by AuthMiddleware.
type RBACAuthorization struct {
	*transport.BaseHandler
	recorder Recorder
}

func NewRBACAuthorization(logger *slog.Logger, recorder Recorder) *RBACAuthorization {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		recorder:    recorder,
	}
}

// Check wraps next so it only runs when the caller holds p.
func (ra *RBACAuthorization) Check(next http.HandlerFunc, p permission.Permission) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			ra.Logger.Warn("authorization check failed: user not found in context")
			ra.recorder.ObserveDenied("unauthenticated")
			ra.WriteAppError(w, internal.ErrMissingToken)
			return
		}

		if !permission.Allows(p, user.Role) {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", user.ID,
				"role", user.Role,
				"required_permission", p)
			ra.recorder.ObserveDenied(string(p))
			ra.WriteAppError(w, internal.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(p permission.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, p)
	}
}

// RequireRole gates on the role hierarchy rather than a named permission.
func (ra *RBACAuthorization) RequireRole(required permission.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.recorder.ObserveDenied("unauthenticated")
				ra.WriteAppError(w, internal.ErrMissingToken)
				return
			}

			if !permission.RoleAtLeast(user.Role, required) {
				ra.Logger.WarnContext(r.Context(), "access denied: role too low",
					"user_id", user.ID,
					"role", user.Role,
					"required_role", required)
				ra.recorder.ObserveDenied("role:" + string(required))
				ra.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
