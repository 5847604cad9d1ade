package routes

import (
	"net/http"
	"time"

	"github.com/drimsoft/planifika-admin/app"
	"github.com/drimsoft/planifika-admin/handlers"
	"github.com/drimsoft/planifika-admin/internal/auth"
	appmw "github.com/drimsoft/planifika-admin/middleware"
	"github.com/drimsoft/planifika-admin/services"
	"github.com/drimsoft/planifika-admin/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config
	logger := deps.Logger

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	if cfg.Observability.MetricsEnabled {
		r.Use(appmw.Metrics(deps.Metrics))
	}

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(deps.AuditService, logger)
	sessionHandler := handlers.NewSessionHandler(deps.SessionService, handlers.CookieConfig{
		Name:   cfg.Session.CookieName,
		MaxAge: cfg.Session.TTL,
		Secure: cfg.IsProduction(),
	}, logger)
	rbacHandler := handlers.NewRBACHandler(logger)
	configHandler := handlers.NewConfigHandler(deps.SystemConfig, cfg.Environment, deps.Diagnostics, logger)
	auditHandler := handlers.NewAuditHandler(deps.Repositories.AuditLogs, deps.AuditService, logger)

	sessions := deps.SessionMiddleware
	authz := deps.Authorizer

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)
	if cfg.Observability.MetricsEnabled {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	loginLimiter := httprate.Limit(cfg.RateLimit.LoginPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			handlers.HandleServiceError(w, services.ErrRateLimitExceeded, logger)
		}),
	)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.With(loginLimiter).Post("/session", sessionHandler.HandleLogin)

		// Anonymous callers see the catalog and get no_principal decisions
		r.Group(func(r chi.Router) {
			r.Use(sessions.LoadSession)
			r.Get("/permissions", rbacHandler.HandleListPermissions)
			r.Post("/authorize", rbacHandler.HandleAuthorize)
		})

		r.Group(func(r chi.Router) {
			r.Use(sessions.RequireSession)

			r.Get("/session", sessionHandler.HandleCurrent)
			r.Delete("/session", sessionHandler.HandleLogout)
			r.Post("/session/refresh", sessionHandler.HandleRefresh)
			r.With(authz.RequirePermission(auth.PermissionUserManageRoles)).
				Put("/sessions/{id}/role", sessionHandler.HandleChangeRole)

			r.With(authz.RequirePermission(auth.PermissionUserRead)).
				Get("/roles", rbacHandler.HandleListRoles)
			r.Get("/navigation", rbacHandler.HandleNavigation)

			r.With(authz.RequirePermission(auth.PermissionSystemConfig)).
				Get("/config", configHandler.HandleGetConfig)

			r.With(authz.RequireSuperAdmin()).Get("/diagnostics", configHandler.HandleDiagnostics)

			r.Route("/audit", func(r chi.Router) {
				r.With(authz.RequireAdmin()).Get("/stats", healthHandler.HandleAuditStats)
				r.With(authz.RequirePermission(auth.PermissionAuditRead)).Get("/logs", auditHandler.HandleList)
				r.With(authz.RequirePermission(auth.PermissionAuditRead)).Get("/logs/{id}", auditHandler.HandleGet)
				r.With(authz.RequirePermission(auth.PermissionAuditExport)).Get("/export", auditHandler.HandleExport)
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}
