package handlers

import (
	"net/http"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/middleware"
	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/utils"
	"go.uber.org/zap"
)

// PermissionInfo describes one catalog entry
type PermissionInfo struct {
	Permission  auth.Permission `json:"permission"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
}

// ResourceGroup is the catalog slice for one resource
type ResourceGroup struct {
	Resource    string           `json:"resource"`
	Permissions []PermissionInfo `json:"permissions"`
}

// RoleInfo describes one role and its literal permission set
type RoleInfo struct {
	Role        auth.Role         `json:"role"`
	Name        string            `json:"name"`
	Seniority   int               `json:"seniority"`
	Permissions []auth.Permission `json:"permissions"`
}

// AuthorizeRequest is a requirement to evaluate for the current actor.
// Both fields are optional; an empty request is always allowed.
type AuthorizeRequest struct {
	Role       string `json:"role,omitempty" validate:"omitempty,role"`
	Permission string `json:"permission,omitempty" validate:"omitempty,permission"`
}

// AuthorizeResponse is the decision for an AuthorizeRequest
type AuthorizeResponse struct {
	Allowed     bool             `json:"allowed"`
	Reason      string           `json:"reason"`
	Requirement auth.Requirement `json:"requirement"`
}

// RBACHandler exposes the permission catalog, the role table and the guard
type RBACHandler struct {
	logger *zap.Logger
}

// NewRBACHandler creates a new RBACHandler
func NewRBACHandler(logger *zap.Logger) *RBACHandler {
	return &RBACHandler{logger: logger}
}

// HandleListPermissions handles GET /api/v1/permissions
func (h *RBACHandler) HandleListPermissions(w http.ResponseWriter, r *http.Request) {
	byResource := auth.PermissionsByResource()

	groups := make([]ResourceGroup, 0, len(byResource))
	for _, resource := range auth.Resources() {
		group := ResourceGroup{Resource: resource}
		for _, p := range byResource[resource] {
			group.Permissions = append(group.Permissions, PermissionInfo{
				Permission:  p,
				Action:      p.Action(),
				Description: auth.Describe(p),
			})
		}
		groups = append(groups, group)
	}

	_ = utils.WriteOK(w, groups)
}

// HandleListRoles handles GET /api/v1/roles
func (h *RBACHandler) HandleListRoles(w http.ResponseWriter, r *http.Request) {
	roles := make([]RoleInfo, 0, len(auth.AllRoles()))
	for _, role := range auth.AllRoles() {
		roles = append(roles, RoleInfo{
			Role:        role,
			Name:        role.DisplayName(),
			Seniority:   role.Seniority(),
			Permissions: auth.PermissionsFor(role),
		})
	}

	_ = utils.WriteOK(w, roles)
}

// HandleAuthorize handles POST /api/v1/authorize
func (h *RBACHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	// Validated above, so parsing cannot fail
	var requirement auth.Requirement
	if req.Role != "" {
		requirement.Role, _ = auth.ParseRole(req.Role)
	}
	if req.Permission != "" {
		requirement.Permission, _ = auth.ParsePermission(req.Permission)
	}

	principal := middleware.GetPrincipalFromContext(r.Context())
	decision := requirement.Evaluate(principal)

	h.logger.Debug("authorization evaluated",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("required_role", requirement.Role.String()),
		zap.String("required_permission", requirement.Permission.String()),
		zap.Bool("allowed", decision.Allowed),
		zap.String("reason", decision.Reason))

	_ = utils.WriteOK(w, AuthorizeResponse{
		Allowed:     decision.Allowed,
		Reason:      decision.Reason,
		Requirement: requirement,
	})
}

// HandleNavigation handles GET /api/v1/navigation
func (h *RBACHandler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	_ = utils.WriteOK(w, models.VisibleNavigation(principal))
}
