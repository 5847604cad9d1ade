package auth

// Principal is the authenticated actor whose role drives every decision
type Principal struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	OrganizationID string `json:"organization_id,omitempty"`
	Avatar         string `json:"avatar,omitempty"`
}

// WithRole returns a copy of the principal carrying a different role
func (p Principal) WithRole(role Role) *Principal {
	p.Role = role
	return &p
}

// HasPermission reports whether the principal's role holds the permission.
// A nil principal or an unmapped role is always denied.
func HasPermission(principal *Principal, permission Permission) bool {
	if principal == nil {
		return false
	}
	return roleHolds(principal.Role, permission)
}

// HasRole is strict equality; seniority is never considered
func HasRole(principal *Principal, role Role) bool {
	if principal == nil {
		return false
	}
	return principal.Role == role
}

// IsAdmin is true for DrimSoft administrators and super administrators
func IsAdmin(principal *Principal) bool {
	if principal == nil {
		return false
	}
	return principal.Role == RoleAdminDrimsoft || principal.Role == RoleSuperAdmin
}

// IsSuperAdmin is true only for super administrators
func IsSuperAdmin(principal *Principal) bool {
	return HasRole(principal, RoleSuperAdmin)
}

// Permissions returns the principal's effective permissions in catalog order
func Permissions(principal *Principal) []Permission {
	if principal == nil {
		return []Permission{}
	}
	return PermissionsFor(principal.Role)
}

// CanGrant reports whether every permission of role is also held by the
// principal. An unmapped role grants nothing and is trivially covered, so
// callers validate the role first.
func CanGrant(principal *Principal, role Role) bool {
	if principal == nil {
		return false
	}
	for _, p := range PermissionsFor(role) {
		if !roleHolds(principal.Role, p) {
			return false
		}
	}
	return true
}
