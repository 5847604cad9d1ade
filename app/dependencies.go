package app

import (
	"fmt"
	"time"

	"github.com/drimsoft/planifika-admin/config"
	"github.com/drimsoft/planifika-admin/internal/observability"
	"github.com/drimsoft/planifika-admin/internal/session"
	"github.com/drimsoft/planifika-admin/middleware"
	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/repositories"
	"github.com/drimsoft/planifika-admin/repositories/memory"
	"github.com/drimsoft/planifika-admin/services"
	"github.com/drimsoft/planifika-admin/services/audit"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Stores
	Sessions     *session.Store
	Repositories repositories.Repositories
	SystemConfig models.SystemConfig

	// Services
	AuditService   *audit.AuditService
	SessionService *services.SessionService

	// Middleware
	SessionMiddleware *middleware.SessionMiddleware
	Authorizer        *middleware.Authorizer
}

// NewDependencies creates and wires up all application dependencies.
// The audit workers are running when it returns; call Close to stop them.
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.Sessions = session.NewStore(session.Config{TTL: cfg.Session.TTL}, logger)
	deps.Metrics = observability.NewMetrics(deps.Sessions.Len)

	auditRepo := memory.NewAuditRepository(cfg.Audit.Capacity, logger)
	deps.Repositories = repositories.Repositories{AuditLogs: auditRepo}

	if err := deps.initAudit(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize audit service: %w", err)
	}

	deps.SessionService = services.NewSessionService(
		deps.Sessions,
		deps.AuditService,
		cfg.Session.AllowedEmailDomain,
		logger,
	)
	if err := deps.SessionService.AssignRoles(cfg.Session.RoleAssignments); err != nil {
		_ = deps.AuditService.Stop(time.Second)
		return nil, fmt.Errorf("failed to seed role assignments: %w", err)
	}
	deps.SessionMiddleware = middleware.NewSessionMiddleware(deps.Sessions, cfg.Session.CookieName, logger)
	deps.Authorizer = middleware.NewAuthorizer(deps.AuditService, deps.Metrics, logger)

	deps.SystemConfig = models.DefaultSystemConfig()
	deps.SystemConfig.Security.SessionTimeoutHours = int(cfg.Session.TTL.Hours())

	logger.Info("all dependencies initialized successfully",
		zap.String("environment", cfg.Environment),
		zap.String("allowed_email_domain", cfg.Session.AllowedEmailDomain),
		zap.Int("role_assignments", len(cfg.Session.RoleAssignments)),
		zap.Duration("session_ttl", cfg.Session.TTL))
	return deps, nil
}

// initAudit starts the audit worker pool
func (d *Dependencies) initAudit(cfg *config.Config) error {
	d.AuditService = audit.NewAuditService(d.Repositories.AuditLogs, d.Logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.WorkerCount,
	})
	return d.AuditService.Start()
}

// Diagnostics summarises runtime state for super administrators
func (d *Dependencies) Diagnostics() map[string]interface{} {
	return map[string]interface{}{
		"active_sessions": d.Sessions.Len(),
		"audit":           d.AuditService.GetStats(),
	}
}

// Close gracefully shuts down all dependencies, draining pending audit events
func (d *Dependencies) Close(timeout time.Duration) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.AuditService != nil {
		if err := d.AuditService.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		} else {
			d.Logger.Info("audit service stopped")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
