package auth

// rolePermissions is the authored role -> permission table. Each entry is
// written out independently; sets are not derived from role seniority and
// must not be "normalised" into a hierarchy.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermissionUserCreate, PermissionUserRead, PermissionUserUpdate, PermissionUserDelete, PermissionUserManageRoles,
		PermissionOrgCreate, PermissionOrgRead, PermissionOrgUpdate, PermissionOrgDelete, PermissionOrgManageUsers,
		PermissionProjectCreate, PermissionProjectRead, PermissionProjectUpdate, PermissionProjectDelete,
		PermissionSystemConfig, PermissionSystemIntegrations, PermissionSystemFeatures, PermissionSystemSecurity, PermissionSystemDatabase,
		PermissionAuditRead, PermissionAuditExport,
		PermissionReportsCreate, PermissionReportsRead, PermissionReportsExport,
	},

	// DrimSoft staff run the platform but do not touch security or
	// database settings, nor the membership of a customer organization.
	RoleAdminDrimsoft: {
		PermissionUserCreate, PermissionUserRead, PermissionUserUpdate, PermissionUserDelete, PermissionUserManageRoles,
		PermissionOrgCreate, PermissionOrgRead, PermissionOrgUpdate, PermissionOrgDelete,
		PermissionProjectCreate, PermissionProjectRead, PermissionProjectUpdate, PermissionProjectDelete,
		PermissionSystemConfig, PermissionSystemIntegrations, PermissionSystemFeatures,
		PermissionAuditRead, PermissionAuditExport,
		PermissionReportsCreate, PermissionReportsRead, PermissionReportsExport,
	},

	RoleAdminOrg: {
		PermissionUserCreate, PermissionUserRead, PermissionUserUpdate,
		PermissionOrgRead, PermissionOrgUpdate, PermissionOrgManageUsers,
		PermissionProjectCreate, PermissionProjectRead, PermissionProjectUpdate, PermissionProjectDelete,
		PermissionAuditRead,
		PermissionReportsCreate, PermissionReportsRead, PermissionReportsExport,
	},

	RoleManager: {
		PermissionUserRead,
		PermissionOrgRead,
		PermissionProjectCreate, PermissionProjectRead, PermissionProjectUpdate,
		PermissionReportsCreate, PermissionReportsRead, PermissionReportsExport,
	},

	RoleMember: {
		PermissionUserRead,
		PermissionOrgRead,
		PermissionProjectRead, PermissionProjectUpdate,
		PermissionReportsRead,
	},

	RoleViewer: {
		PermissionOrgRead,
		PermissionProjectRead,
		PermissionReportsRead,
	},
}

// roleSets is rolePermissions indexed for O(1) membership checks
var roleSets = func() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

// roleHolds reports membership; an unmapped role holds nothing
func roleHolds(role Role, p Permission) bool {
	set, ok := roleSets[role]
	if !ok {
		return false
	}
	_, ok = set[p]
	return ok
}

// PermissionsFor returns the role's permissions in catalog order.
// An unmapped role yields an empty slice.
func PermissionsFor(role Role) []Permission {
	out := []Permission{}
	for _, p := range catalog {
		if roleHolds(role, p) {
			out = append(out, p)
		}
	}
	return out
}

// RoleTable returns a copy of the full table, one entry per known role
func RoleTable() map[Role][]Permission {
	table := make(map[Role][]Permission, len(roles))
	for _, r := range roles {
		table[r] = PermissionsFor(r)
	}
	return table
}
