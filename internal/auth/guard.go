package auth

// Decision reasons
const (
	ReasonAllowed           = "allowed"
	ReasonNoPrincipal       = "no_principal"
	ReasonRoleMismatch      = "role_mismatch"
	ReasonMissingPermission = "missing_permission"
	ReasonNotAdmin          = "not_admin"
	ReasonNotSuperAdmin     = "not_super_admin"
)

// Requirement describes what a guarded region needs. Zero-valued fields
// are not required; an empty Requirement allows everyone, including a nil
// principal.
type Requirement struct {
	Role       Role       `json:"role,omitempty"`
	Permission Permission `json:"permission,omitempty"`
}

// RequirePermission builds a permission-only requirement
func RequirePermission(p Permission) Requirement {
	return Requirement{Permission: p}
}

// RequireRole builds a role-only requirement
func RequireRole(r Role) Requirement {
	return Requirement{Role: r}
}

// IsEmpty reports whether the requirement imposes nothing
func (r Requirement) IsEmpty() bool {
	return r.Role == "" && r.Permission == ""
}

// Decision is the outcome of evaluating a requirement
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Evaluate checks the role first, then the permission. Both must pass.
func (r Requirement) Evaluate(principal *Principal) Decision {
	if r.IsEmpty() {
		return Decision{Allowed: true, Reason: ReasonAllowed}
	}
	if principal == nil {
		return Decision{Allowed: false, Reason: ReasonNoPrincipal}
	}
	if r.Role != "" && !HasRole(principal, r.Role) {
		return Decision{Allowed: false, Reason: ReasonRoleMismatch}
	}
	if r.Permission != "" && !HasPermission(principal, r.Permission) {
		return Decision{Allowed: false, Reason: ReasonMissingPermission}
	}
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

// Allows is Evaluate reduced to a boolean
func (r Requirement) Allows(principal *Principal) bool {
	return r.Evaluate(principal).Allowed
}

// Guard yields content when the requirement passes and fallback otherwise
func Guard[T any](principal *Principal, req Requirement, content, fallback T) T {
	if req.Allows(principal) {
		return content
	}
	return fallback
}

// AdminOnly yields content for DrimSoft administrators and super administrators
func AdminOnly[T any](principal *Principal, content, fallback T) T {
	if IsAdmin(principal) {
		return content
	}
	return fallback
}

// SuperAdminOnly yields content for super administrators only
func SuperAdminOnly[T any](principal *Principal, content, fallback T) T {
	if IsSuperAdmin(principal) {
		return content
	}
	return fallback
}
