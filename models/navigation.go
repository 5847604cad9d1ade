package models

import "github.com/drimsoft/planifika-admin/internal/auth"

// NavigationItem is one entry of the console sidebar
type NavigationItem struct {
	Name       string          `json:"name"`
	Href       string          `json:"href"`
	Icon       string          `json:"icon"`
	Permission auth.Permission `json:"permission"`
}

// Navigation is the sidebar in display order. Each item is shown only to
// principals holding its permission.
var Navigation = []NavigationItem{
	{Name: "Dashboard", Href: "/dashboard", Icon: "layout-dashboard", Permission: auth.PermissionUserRead},
	{Name: "Organizaciones", Href: "/institutions", Icon: "building", Permission: auth.PermissionOrgRead},
	{Name: "Proyectos", Href: "/projects", Icon: "folder-open", Permission: auth.PermissionProjectRead},
	{Name: "Usuarios", Href: "/users", Icon: "users", Permission: auth.PermissionUserRead},
	{Name: "Reportes", Href: "/reports", Icon: "bar-chart-3", Permission: auth.PermissionReportsRead},
	{Name: "Auditoría", Href: "/audit", Icon: "shield", Permission: auth.PermissionAuditRead},
	{Name: "Configuración", Href: "/config", Icon: "settings", Permission: auth.PermissionSystemConfig},
}

// VisibleNavigation filters the sidebar for a principal
func VisibleNavigation(principal *auth.Principal) []NavigationItem {
	out := []NavigationItem{}
	for _, item := range Navigation {
		if auth.HasPermission(principal, item.Permission) {
			out = append(out, item)
		}
	}
	return out
}
