package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role name is not recognised
var ErrUnknownRole = errors.New("unknown role")

// Role is the tier an actor holds. Exactly one per actor.
type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RoleAdminDrimsoft Role = "admin_drimsoft"
	RoleAdminOrg      Role = "admin_org"
	RoleManager       Role = "manager"
	RoleMember        Role = "member"
	RoleViewer        Role = "viewer"
)

// DefaultRole is assigned when a session is opened without an explicit role
const DefaultRole = RoleAdminDrimsoft

// roles is ordered from most to least senior
var roles = []Role{
	RoleSuperAdmin,
	RoleAdminDrimsoft,
	RoleAdminOrg,
	RoleManager,
	RoleMember,
	RoleViewer,
}

// AllRoles returns every role, most senior first
func AllRoles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r.Seniority() >= 0
}

// Seniority is informational only: 0 is the most senior, -1 is unknown.
// Authorization never derives permissions from it.
func (r Role) Seniority() int {
	for i, known := range roles {
		if known == r {
			return i
		}
	}
	return -1
}

// DisplayName renders the role for humans, e.g. "admin drimsoft"
func (r Role) DisplayName() string {
	return strings.ReplaceAll(string(r), "_", " ")
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts external input into a known role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}
