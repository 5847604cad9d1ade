package auth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPermission is returned when a token is not part of the catalog
var ErrUnknownPermission = errors.New("unknown permission")

// Permission is a capability token named <resource>:<action>
type Permission string

const (
	// Users
	PermissionUserCreate      Permission = "user:create"
	PermissionUserRead        Permission = "user:read"
	PermissionUserUpdate      Permission = "user:update"
	PermissionUserDelete      Permission = "user:delete"
	PermissionUserManageRoles Permission = "user:manage_roles"

	// Organizations
	PermissionOrgCreate      Permission = "org:create"
	PermissionOrgRead        Permission = "org:read"
	PermissionOrgUpdate      Permission = "org:update"
	PermissionOrgDelete      Permission = "org:delete"
	PermissionOrgManageUsers Permission = "org:manage_users"

	// Projects
	PermissionProjectCreate Permission = "project:create"
	PermissionProjectRead   Permission = "project:read"
	PermissionProjectUpdate Permission = "project:update"
	PermissionProjectDelete Permission = "project:delete"

	// System configuration
	PermissionSystemConfig       Permission = "system:config"
	PermissionSystemIntegrations Permission = "system:integrations"
	PermissionSystemFeatures     Permission = "system:features"
	PermissionSystemSecurity     Permission = "system:security"
	PermissionSystemDatabase     Permission = "system:database"

	// Audit
	PermissionAuditRead   Permission = "audit:read"
	PermissionAuditExport Permission = "audit:export"

	// Reports
	PermissionReportsCreate Permission = "reports:create"
	PermissionReportsRead   Permission = "reports:read"
	PermissionReportsExport Permission = "reports:export"
)

// catalog lists every permission in declaration order.
var catalog = []Permission{
	PermissionUserCreate,
	PermissionUserRead,
	PermissionUserUpdate,
	PermissionUserDelete,
	PermissionUserManageRoles,
	PermissionOrgCreate,
	PermissionOrgRead,
	PermissionOrgUpdate,
	PermissionOrgDelete,
	PermissionOrgManageUsers,
	PermissionProjectCreate,
	PermissionProjectRead,
	PermissionProjectUpdate,
	PermissionProjectDelete,
	PermissionSystemConfig,
	PermissionSystemIntegrations,
	PermissionSystemFeatures,
	PermissionSystemSecurity,
	PermissionSystemDatabase,
	PermissionAuditRead,
	PermissionAuditExport,
	PermissionReportsCreate,
	PermissionReportsRead,
	PermissionReportsExport,
}

var descriptions = map[Permission]string{
	PermissionUserCreate:         "Create users",
	PermissionUserRead:           "View users",
	PermissionUserUpdate:         "Edit users",
	PermissionUserDelete:         "Delete users",
	PermissionUserManageRoles:    "Assign and change user roles",
	PermissionOrgCreate:          "Create organizations",
	PermissionOrgRead:            "View organizations",
	PermissionOrgUpdate:          "Edit organizations",
	PermissionOrgDelete:          "Delete organizations",
	PermissionOrgManageUsers:     "Manage organization membership",
	PermissionProjectCreate:      "Create projects",
	PermissionProjectRead:        "View projects",
	PermissionProjectUpdate:      "Edit projects",
	PermissionProjectDelete:      "Delete projects",
	PermissionSystemConfig:       "View and edit general system configuration",
	PermissionSystemIntegrations: "Configure external integrations",
	PermissionSystemFeatures:     "Toggle platform features",
	PermissionSystemSecurity:     "Configure security policies",
	PermissionSystemDatabase:     "Configure database backups and retention",
	PermissionAuditRead:          "View the audit log",
	PermissionAuditExport:        "Export the audit log",
	PermissionReportsCreate:      "Create reports",
	PermissionReportsRead:        "View reports",
	PermissionReportsExport:      "Export reports",
}

var catalogIndex = func() map[Permission]int {
	idx := make(map[Permission]int, len(catalog))
	for i, p := range catalog {
		idx[p] = i
	}
	return idx
}()

// AllPermissions returns the full catalog in declaration order
func AllPermissions() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether the permission is a catalog member
func (p Permission) Valid() bool {
	_, ok := catalogIndex[p]
	return ok
}

// Resource returns the part before the colon
func (p Permission) Resource() string {
	resource, _, _ := strings.Cut(string(p), ":")
	return resource
}

// Action returns the part after the colon
func (p Permission) Action() string {
	_, action, _ := strings.Cut(string(p), ":")
	return action
}

func (p Permission) String() string {
	return string(p)
}

// Describe returns a human readable description, or "" for unknown tokens
func Describe(p Permission) string {
	return descriptions[p]
}

// ParsePermission converts external input into a catalog permission
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.TrimSpace(s))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

// PermissionsByResource groups the catalog by resource, preserving order
func PermissionsByResource() map[string][]Permission {
	groups := make(map[string][]Permission)
	for _, p := range catalog {
		groups[p.Resource()] = append(groups[p.Resource()], p)
	}
	return groups
}

// Resources returns resource names in catalog order
func Resources() []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range catalog {
		if r := p.Resource(); !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}
