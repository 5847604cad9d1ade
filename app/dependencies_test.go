package app

import (
	"context"
	"testing"
	"time"

	"github.com/drimsoft/planifika-admin/config"
	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/services"
	"github.com/drimsoft/planifika-admin/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Session: config.SessionConfig{
			TTL:                8 * time.Hour,
			SweepInterval:      time.Minute,
			AllowedEmailDomain: "drimsoft.com",
			CookieName:         "session",
		},
		Audit:         config.AuditConfig{BufferSize: 16, WorkerCount: 1, Capacity: 100},
		RateLimit:     config.RateLimitConfig{LoginPerMinute: 10},
		Observability: config.ObservabilityConfig{LogLevel: "debug", LogFormat: "text", MetricsEnabled: true},
	}
}

func TestNewDependencies(t *testing.T) {
	t.Run("wires every component", func(t *testing.T) {
		deps, err := NewDependencies(testConfig(), zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NotNil(t, deps)

		assert.NotNil(t, deps.Sessions)
		assert.NotNil(t, deps.Metrics)
		assert.NotNil(t, deps.Repositories.AuditLogs)
		assert.NotNil(t, deps.SessionService)
		assert.NotNil(t, deps.SessionMiddleware)
		assert.NotNil(t, deps.Authorizer)
		assert.Equal(t, 8, deps.SystemConfig.Security.SessionTimeoutHours)
		assert.True(t, deps.AuditService.GetStats().Started)

		require.NoError(t, deps.Close(time.Second))
		assert.False(t, deps.AuditService.GetStats().Started)
	})

	t.Run("role assignments are seeded", func(t *testing.T) {
		cfg := testConfig()
		cfg.Session.RoleAssignments = map[string]auth.Role{"root@drimsoft.com": auth.RoleSuperAdmin}
		deps, err := NewDependencies(cfg, zaptest.NewLogger(t))
		require.NoError(t, err)
		defer deps.Close(time.Second)

		sess, err := deps.SessionService.Login(context.Background(), services.LoginInput{
			Email: "root@drimsoft.com",
			Name:  "Root",
		}, audit.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, auth.RoleSuperAdmin, sess.Principal().Role)
	})

	t.Run("invalid role assignment fails wiring", func(t *testing.T) {
		cfg := testConfig()
		cfg.Session.RoleAssignments = map[string]auth.Role{"root@drimsoft.com": auth.Role("owner")}
		_, err := NewDependencies(cfg, zaptest.NewLogger(t))
		assert.Error(t, err)
	})

	t.Run("login flows through to the audit trail", func(t *testing.T) {
		deps, err := NewDependencies(testConfig(), zaptest.NewLogger(t))
		require.NoError(t, err)

		sess, err := deps.SessionService.Login(context.Background(), services.LoginInput{
			Email: "Ana@DrimSoft.com",
			Name:  "Ana",
		}, audit.RequestMeta{RequestID: "req-1"})
		require.NoError(t, err)
		assert.Equal(t, auth.DefaultRole, sess.Principal().Role)
		assert.Equal(t, 1, deps.Sessions.Len())

		require.NoError(t, deps.Close(time.Second))

		logs, err := deps.Repositories.AuditLogs.List(context.Background(), models.AuditFilter{Action: models.AuditActionLogin}, 0, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "ana@drimsoft.com", logs[0].Actor)
		assert.Equal(t, "req-1", logs[0].RequestID)
	})

	t.Run("diagnostics", func(t *testing.T) {
		deps, err := NewDependencies(testConfig(), zaptest.NewLogger(t))
		require.NoError(t, err)
		defer func() { _ = deps.Close(time.Second) }()

		diag := deps.Diagnostics()
		assert.Equal(t, 0, diag["active_sessions"])
		assert.IsType(t, audit.Stats{}, diag["audit"])
	})
}

func TestDependencies_CloseTwice(t *testing.T) {
	deps, err := NewDependencies(testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, deps.Close(time.Second))
	assert.Error(t, deps.Close(time.Second))
}
