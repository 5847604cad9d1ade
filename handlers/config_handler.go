package handlers

import (
	"net/http"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/middleware"
	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/utils"
	"go.uber.org/zap"
)

// RestrictedSection replaces a section the actor may not see
type RestrictedSection struct {
	Restricted bool `json:"restricted"`
}

var restricted interface{} = RestrictedSection{Restricted: true}

// ConfigResponse is the configuration screen. Each section holds either
// its settings or a RestrictedSection.
type ConfigResponse struct {
	General      interface{} `json:"general"`
	Features     interface{} `json:"features"`
	Integrations interface{} `json:"integrations"`
	Security     interface{} `json:"security"`
	Database     interface{} `json:"database"`
	Environment  string      `json:"environment,omitempty"`
	Diagnostics  interface{} `json:"diagnostics,omitempty"`
}

// ConfigHandler serves the platform configuration screen
type ConfigHandler struct {
	config      models.SystemConfig
	environment string
	diagnostics func() map[string]interface{}
	logger      *zap.Logger
}

// NewConfigHandler creates a new ConfigHandler. diagnostics may be nil.
func NewConfigHandler(cfg models.SystemConfig, environment string, diagnostics func() map[string]interface{}, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		config:      cfg,
		environment: environment,
		diagnostics: diagnostics,
		logger:      logger,
	}
}

// HandleGetConfig handles GET /api/v1/config
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	p := middleware.GetPrincipalFromContext(r.Context())
	section := func(perm auth.Permission, content interface{}) interface{} {
		return auth.Guard(p, auth.RequirePermission(perm), content, restricted)
	}

	resp := ConfigResponse{
		General:      section(auth.PermissionSystemConfig, h.config.General),
		Features:     section(auth.PermissionSystemFeatures, h.config.Features),
		Integrations: section(auth.PermissionSystemIntegrations, h.config.Integrations),
		Security:     section(auth.PermissionSystemSecurity, h.config.Security),
		Database:     section(auth.PermissionSystemDatabase, h.config.Database),
		Environment:  auth.AdminOnly(p, h.environment, ""),
	}
	if h.diagnostics != nil {
		resp.Diagnostics = auth.SuperAdminOnly[interface{}](p, h.diagnostics(), nil)
	}

	_ = utils.WriteOK(w, resp)
}

// HandleDiagnostics handles GET /api/v1/diagnostics
func (h *ConfigHandler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if h.diagnostics == nil {
		_ = utils.WriteOK(w, map[string]interface{}{})
		return
	}
	_ = utils.WriteOK(w, h.diagnostics())
}
