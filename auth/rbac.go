package auth

import (
	"fmt"
	"slices"
)

// Permission names one capability checked by the API.
type Permission string

const (
	PermExecuteTools    Permission = "execute_tools"
	PermViewReports     Permission = "view_reports"
	PermManageUsers     Permission = "manage_users"
	PermConfigureSystem Permission = "configure_system"
	PermManageScans     Permission = "manage_scans"
	PermViewDashboards  Permission = "view_dashboards"
)

// AllPermissions lists every permission in declaration order.
var AllPermissions = []Permission{
	PermExecuteTools,
	PermViewReports,
	PermManageUsers,
	PermConfigureSystem,
	PermManageScans,
	PermViewDashboards,
}

// Built-in role names.
const (
	RoleAdmin     = "admin"
	RolePentester = "pentester"
	RoleAuditor   = "auditor"
	RoleViewer    = "viewer"
)

// Wildcard grants every permission.
const Wildcard Permission = "*"

// DefaultRoles returns the built-in role table.
func DefaultRoles() map[string][]Permission {
	return map[string][]Permission{
		RoleAdmin:     {Wildcard},
		RolePentester: {PermExecuteTools, PermViewReports, PermManageScans},
		RoleAuditor:   {PermViewReports, PermViewDashboards},
		RoleViewer:    {PermViewDashboards},
	}
}

// RBAC maps roles to permissions. It is immutable after construction.
type RBAC struct {
	roles map[string][]Permission
}

// NewRBAC builds an RBAC from roles. A nil table uses DefaultRoles.
func NewRBAC(roles map[string][]Permission) *RBAC {
	if roles == nil {
		roles = DefaultRoles()
	}
	table := make(map[string][]Permission, len(roles))
	for name, perms := range roles {
		table[name] = expand(perms)
	}
	return &RBAC{roles: table}
}

func expand(perms []Permission) []Permission {
	if slices.Contains(perms, Wildcard) {
		return slices.Clone(AllPermissions)
	}
	return slices.Clone(perms)
}

// Permissions returns the permissions granted by role.
func (r *RBAC) Permissions(role string) ([]Permission, error) {
	perms, ok := r.roles[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return slices.Clone(perms), nil
}

// HasPermission reports whether role grants perm. Unknown roles grant nothing.
func (r *RBAC) HasPermission(role string, perm Permission) bool {
	return slices.Contains(r.roles[role], perm)
}

// Authorize returns nil when any of id's roles grants perm.
func (r *RBAC) Authorize(id *Identity, perm Permission) error {
	if id == nil {
		return &AuthzError{Permission: perm, Reason: "no identity"}
	}
	for _, role := range id.Roles {
		if r.HasPermission(role, perm) {
			return nil
		}
	}
	return &AuthzError{Subject: id.Principal, Permission: perm, Reason: "no role grants permission"}
}

// AuthzError describes a denied request. It matches ErrForbidden.
type AuthzError struct {
	Subject    string
	Permission Permission
	Reason     string
}

func (e *AuthzError) Error() string {
	return fmt.Sprintf("auth: access denied: subject=%q permission=%q reason=%q", e.Subject, e.Permission, e.Reason)
}

func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}
