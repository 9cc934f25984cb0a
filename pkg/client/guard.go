package client

import (
	"github.com/frahmantamala/bodega-inventory/pkg/permission"
)

// Decision is the outcome of entering a page. Redirect is empty when the
// page may render.
type Decision struct {
	Allowed  bool
	Redirect string
}

type NavState int

const (
	Anonymous NavState = iota
	Authenticated
)

func (s NavState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Control is a UI element that should only be shown with a permission.
type Control struct {
	Name       string
	Permission permission.Permission
}

// Guard decides what the signed-in user may see. It reads the cached
// profile, so it is a presentation aid only; the server enforces the same
// rules on every call.
type Guard struct {
	session *SessionStore
}

func NewGuard(session *SessionStore) *Guard {
	return &Guard{session: session}
}

func (g *Guard) role() (permission.Role, bool) {
	if !g.session.IsAuthenticated() {
		return "", false
	}
	user := g.session.CurrentUser()
	if user == nil {
		return "", false
	}
	return user.Role, true
}

// State is Authenticated only while a token and a readable profile are both
// present. The client drops back to Anonymous on logout, a failed
// verification or any 401.
func (g *Guard) State() NavState {
	if _, ok := g.role(); ok {
		return Authenticated
	}
	return Anonymous
}

// EnterPage sends anonymous users to the login page and users lacking the
// page's permission to their role's landing page.
func (g *Guard) EnterPage(route string) Decision {
	role, ok := g.role()
	if !ok {
		if permission.IsLoginRoute(route) {
			return Decision{Allowed: true}
		}
		return Decision{Redirect: permission.LoginRoute}
	}

	if permission.IsLoginRoute(route) {
		return Decision{Redirect: permission.DefaultRoute(role)}
	}
	if !permission.CanAccessRoute(route, role) {
		return Decision{Redirect: permission.DefaultRoute(role)}
	}
	return Decision{Allowed: true}
}

func (g *Guard) Can(p permission.Permission) bool {
	role, ok := g.role()
	if !ok {
		return false
	}
	return permission.Allows(p, role)
}

// VisibleControls filters controls down to the ones the user may use.
func (g *Guard) VisibleControls(controls []Control) []Control {
	visible := make([]Control, 0, len(controls))
	for _, c := range controls {
		if g.Can(c.Permission) {
			visible = append(visible, c)
		}
	}
	return visible
}
