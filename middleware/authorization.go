package middleware

import (
	"net/http"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/services/audit"
	"github.com/drimsoft/planifika-admin/utils"
	"go.uber.org/zap"
)

// AccessAuditor records denied requests
type AccessAuditor interface {
	LogAccessDenied(p *auth.Principal, route string, req auth.Requirement, decision auth.Decision, meta audit.RequestMeta) error
}

// DecisionRecorder counts authorization decisions
type DecisionRecorder interface {
	RecordDecision(requirement string, allowed bool, reason string)
}

// Authorizer guards routes with role and permission requirements. It must
// run after SessionMiddleware.
type Authorizer struct {
	auditor AccessAuditor
	metrics DecisionRecorder
	logger  *zap.Logger
}

// NewAuthorizer creates a new Authorizer. auditor and metrics may be nil.
func NewAuthorizer(auditor AccessAuditor, metrics DecisionRecorder, logger *zap.Logger) *Authorizer {
	return &Authorizer{
		auditor: auditor,
		metrics: metrics,
		logger:  logger,
	}
}

// Require guards a route with an arbitrary requirement
func (a *Authorizer) Require(req auth.Requirement) func(http.Handler) http.Handler {
	return a.guard(requirementLabel(req), req, req.Evaluate)
}

// RequirePermission guards a route with a single permission
func (a *Authorizer) RequirePermission(p auth.Permission) func(http.Handler) http.Handler {
	return a.Require(auth.RequirePermission(p))
}

// RequireRole guards a route with an exact role
func (a *Authorizer) RequireRole(r auth.Role) func(http.Handler) http.Handler {
	return a.Require(auth.RequireRole(r))
}

// RequireAdmin admits DrimSoft administrators and super administrators
func (a *Authorizer) RequireAdmin() func(http.Handler) http.Handler {
	return a.guard("admin", auth.Requirement{}, func(p *auth.Principal) auth.Decision {
		switch {
		case p == nil:
			return auth.Decision{Reason: auth.ReasonNoPrincipal}
		case !auth.IsAdmin(p):
			return auth.Decision{Reason: auth.ReasonNotAdmin}
		}
		return auth.Decision{Allowed: true, Reason: auth.ReasonAllowed}
	})
}

// RequireSuperAdmin admits super administrators only
func (a *Authorizer) RequireSuperAdmin() func(http.Handler) http.Handler {
	return a.guard("super_admin", auth.RequireRole(auth.RoleSuperAdmin), func(p *auth.Principal) auth.Decision {
		switch {
		case p == nil:
			return auth.Decision{Reason: auth.ReasonNoPrincipal}
		case !auth.IsSuperAdmin(p):
			return auth.Decision{Reason: auth.ReasonNotSuperAdmin}
		}
		return auth.Decision{Allowed: true, Reason: auth.ReasonAllowed}
	})
}

func (a *Authorizer) guard(label string, req auth.Requirement, evaluate func(*auth.Principal) auth.Decision) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := GetPrincipalFromContext(r.Context())
			decision := evaluate(principal)

			if a.metrics != nil {
				a.metrics.RecordDecision(label, decision.Allowed, decision.Reason)
			}

			if decision.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			a.deny(w, r, principal, label, req, decision)
		})
	}
}

func (a *Authorizer) deny(w http.ResponseWriter, r *http.Request, principal *auth.Principal, label string, req auth.Requirement, decision auth.Decision) {
	requestID := GetRequestIDFromContext(r.Context())
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("requirement", label),
		zap.String("required_role", req.Role.String()),
		zap.String("required_permission", req.Permission.String()),
		zap.String("reason", decision.Reason),
		zap.String("path", r.URL.Path),
	}
	if principal != nil {
		fields = append(fields, zap.String("principal_id", principal.ID), zap.String("role", principal.Role.String()))
	}
	a.logger.Warn("authorization denied", fields...)

	if a.auditor != nil {
		if err := a.auditor.LogAccessDenied(principal, r.URL.Path, req, decision, RequestMeta(r)); err != nil {
			a.logger.Warn("audit event not recorded", zap.String("request_id", requestID), zap.Error(err))
		}
	}

	if principal == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}
	_ = utils.WriteForbidden(w, "Insufficient permissions", map[string]interface{}{
		"requirement": label,
		"reason":      decision.Reason,
	})
}

func requirementLabel(req auth.Requirement) string {
	switch {
	case req.IsEmpty():
		return "none"
	case req.Role != "" && req.Permission != "":
		return "role:" + req.Role.String() + "+permission:" + req.Permission.String()
	case req.Role != "":
		return "role:" + req.Role.String()
	default:
		return "permission:" + req.Permission.String()
	}
}
