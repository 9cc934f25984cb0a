package permission

import (
	"path"
	"strings"
)

const (
	LoginRoute     = "/pages/login.html"
	InventoryRoute = "/pages/inventory.html"
	IndexRoute     = "/pages/index.html"
	ReportsRoute   = "/pages/reports.html"
	UsersRoute     = "/pages/users.html"
)

var defaultRoutes = map[Role]string{
	RoleSuperAdmin: ReportsRoute,
	RoleAdmin:      InventoryRoute,
	RoleUser:       InventoryRoute,
}

var routePermissions = map[string]Permission{
	InventoryRoute: ViewInventory,
	IndexRoute:     ViewInventory,
	ReportsRoute:   ViewReports,
	UsersRoute:     ManageUsers,
}

// DefaultRoute is the landing page for a role. Unknown roles land on login.
func DefaultRoute(role Role) string {
	if route, ok := defaultRoutes[role]; ok {
		return route
	}
	return LoginRoute
}

// RoutePermission returns the permission a page requires. ok is false for
// pages that only need an authenticated session.
func RoutePermission(route string) (Permission, bool) {
	p, ok := routePermissions[NormalizeRoute(route)]
	return p, ok
}

// CanAccessRoute applies RoutePermission and Allows for role.
func CanAccessRoute(route string, role Role) bool {
	p, ok := RoutePermission(route)
	if !ok {
		return ValidRole(role)
	}
	return Allows(p, role)
}

// NormalizeRoute drops the query and fragment and resolves relative
// segments, so "../pages/users.html?tab=1" becomes "/pages/users.html". The
// site root and the bare "/index.html" both map to IndexRoute.
func NormalizeRoute(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	route = path.Clean("/" + route)
	if route == "/" || route == "/index.html" {
		return IndexRoute
	}
	return route
}

// IsLoginRoute reports whether route is the login page in any spelling.
func IsLoginRoute(route string) bool {
	return NormalizeRoute(route) == LoginRoute
}
