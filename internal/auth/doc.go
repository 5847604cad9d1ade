// Package auth provides the authorization primitives for the Planifika
// admin console.
//
// This package implements:
//   - The permission catalog (closed set of <resource>:<action> tokens)
//   - The role enumeration and the literal role -> permission table
//   - Resolver predicates (HasPermission, HasRole, IsAdmin, IsSuperAdmin)
//   - Guards that choose between protected content and a fallback
//
// Every check takes the principal explicitly. A nil principal or a role
// missing from the table always resolves to "denied".
package auth
