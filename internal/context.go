package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

// Principal is the authenticated caller as loaded from the user store by the
// auth middleware. Role is authoritative, never taken from the token alone.
type Principal struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Role     permission.Role `json:"role"`
	TokenID  string          `json:"-"`
}

func (p *Principal) Can(perm permission.Permission) bool {
	if p == nil {
		return false
	}
	return permission.Allows(perm, p.Role)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
