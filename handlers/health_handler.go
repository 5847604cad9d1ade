package handlers

import (
	"net/http"
	"time"

	"github.com/drimsoft/planifika-admin/services/audit"
	"github.com/drimsoft/planifika-admin/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// AuditStatsProvider reports the state of the audit pipeline
type AuditStatsProvider interface {
	GetStats() audit.Stats
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	audit  AuditStatsProvider
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(auditStats AuditStatsProvider, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		audit:  auditStats,
		logger: logger,
	}
}

// HandleHealth handles GET /healthz
// Basic health check - always returns 200 if service is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// The service is ready once the audit pipeline is running and has buffer room.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	allHealthy := true

	stats := h.audit.GetStats()
	switch {
	case !stats.Started:
		h.logger.Warn("audit pipeline not running")
		checks["audit"] = "unhealthy"
		allHealthy = false
	case stats.PendingEvents >= stats.BufferSize:
		h.logger.Warn("audit buffer full", zap.Int("pending", stats.PendingEvents))
		checks["audit"] = "degraded"
		allHealthy = false
	default:
		checks["audit"] = "healthy"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleAuditStats handles GET /api/v1/audit/stats
func (h *HealthHandler) HandleAuditStats(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.audit.GetStats())
}
