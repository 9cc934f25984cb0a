// Package permission holds the single role and permission model shared by the
// HTTP server guards and the client SDK.
package permission

import (
	"fmt"
	"sort"
	"strings"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// rank orders roles for RoleAtLeast. Zero means unknown.
var rank = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

type Permission string

const (
	ViewInventory  Permission = "VIEW_INVENTORY"
	SearchProducts Permission = "SEARCH_PRODUCTS"
	AddProduct     Permission = "ADD_PRODUCT"
	EditProduct    Permission = "EDIT_PRODUCT"
	DeleteProduct  Permission = "DELETE_PRODUCT"
	ViewUsers      Permission = "VIEW_USERS"
	ManageUsers    Permission = "MANAGE_USERS"
	ViewReports    Permission = "VIEW_REPORTS"
	ExportReports  Permission = "EXPORT_REPORTS"
)

var table = map[Permission][]Role{
	ViewInventory:  {RoleUser, RoleAdmin, RoleSuperAdmin},
	SearchProducts: {RoleUser, RoleAdmin, RoleSuperAdmin},
	AddProduct:     {RoleAdmin, RoleSuperAdmin},
	EditProduct:    {RoleAdmin, RoleSuperAdmin},
	DeleteProduct:  {RoleAdmin, RoleSuperAdmin},
	ViewUsers:      {RoleSuperAdmin},
	ManageUsers:    {RoleSuperAdmin},
	ViewReports:    {RoleSuperAdmin},
	ExportReports:  {RoleSuperAdmin},
}

// Allows reports whether role holds the named permission.
// Unknown permission names are denied for every role, super_admin included.
func Allows(p Permission, role Role) bool {
	roles, ok := table[p]
	if !ok {
		return false
	}
	if role == RoleSuperAdmin {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleAtLeast reports whether userRole sits at or above required in the
// hierarchy user < admin < super_admin. An unknown required role is never met.
func RoleAtLeast(userRole, required Role) bool {
	need, ok := rank[required]
	if !ok {
		return false
	}
	return rank[userRole] >= need
}

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	_, ok := rank[r]
	return ok
}

// ParseRole trims s and returns it as a Role, or an error when the role is
// unknown.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !ValidRole(r) {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Known reports whether p is in the permission table.
func Known(p Permission) bool {
	_, ok := table[p]
	return ok
}

// Permissions lists every known permission name in stable order.
func Permissions() []Permission {
	out := make([]Permission, 0, len(table))
	for p := range table {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Granted lists the permissions a role holds, in stable order.
func Granted(role Role) []Permission {
	var out []Permission
	for _, p := range Permissions() {
		if Allows(p, role) {
			out = append(out, p)
		}
	}
	return out
}

// Roles lists the roles from lowest to highest.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
}
