package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditLog(t *testing.T) {
	log := NewAuditLog(AuditActionAccessDenied, "route", SeverityMedium)

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, "anonymous", log.Actor)
	assert.Equal(t, AuditActionAccessDenied, log.Action)
	assert.Equal(t, "route", log.Entity)
	assert.Equal(t, SeverityMedium, log.Severity)
	assert.False(t, log.Timestamp.IsZero())
}

func TestAuditLog_Builders(t *testing.T) {
	log := NewAuditLog(AuditActionRoleChanged, "session", SeverityHigh).
		WithActor("u-1", "ana@drimsoft.com").
		WithEntity("s-1").
		WithDetails(map[string]string{"from": "member", "to": "admin_org"}).
		WithRequest("req-1", "10.0.0.1", "curl/8.0")

	assert.Equal(t, "u-1", log.ActorID)
	assert.Equal(t, "ana@drimsoft.com", log.Actor)
	assert.Equal(t, "s-1", log.EntityID)
	assert.Equal(t, "req-1", log.RequestID)
	assert.Equal(t, "10.0.0.1", log.IPAddress)
	assert.Equal(t, "curl/8.0", log.UserAgent)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "admin_org", details["to"])
}

func TestAuditLog_WithActorKeepsAnonymousWithoutEmail(t *testing.T) {
	log := NewAuditLog(AuditActionAccessDenied, "route", SeverityLow).WithActor("u-1", "")
	assert.Equal(t, "anonymous", log.Actor)
	assert.Equal(t, "u-1", log.ActorID)
}

func TestAuditSeverity_Valid(t *testing.T) {
	for _, s := range []AuditSeverity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		assert.True(t, s.Valid())
	}
	assert.False(t, AuditSeverity("Urgent").Valid())
	assert.False(t, AuditSeverity("low").Valid())
}

func TestAuditFilter_Matches(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	log := &AuditLog{
		Actor:     "ana@drimsoft.com",
		ActorID:   "u-1",
		Action:    AuditActionLogin,
		Severity:  SeverityLow,
		Timestamp: base,
	}

	tests := []struct {
		name   string
		filter AuditFilter
		want   bool
	}{
		{"empty filter", AuditFilter{}, true},
		{"actor by email", AuditFilter{Actor: "ana@drimsoft.com"}, true},
		{"actor by id", AuditFilter{Actor: "u-1"}, true},
		{"other actor", AuditFilter{Actor: "luis@drimsoft.com"}, false},
		{"action", AuditFilter{Action: AuditActionLogin}, true},
		{"other action", AuditFilter{Action: AuditActionLogout}, false},
		{"severity in list", AuditFilter{Severities: []AuditSeverity{SeverityHigh, SeverityLow}}, true},
		{"severity not in list", AuditFilter{Severities: []AuditSeverity{SeverityHigh}}, false},
		{"since before", AuditFilter{Since: base.Add(-time.Hour)}, true},
		{"since after", AuditFilter{Since: base.Add(time.Hour)}, false},
		{"until after", AuditFilter{Until: base.Add(time.Hour)}, true},
		{"until before", AuditFilter{Until: base.Add(-time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(log))
		})
	}
}

func TestVisibleNavigation(t *testing.T) {
	names := func(items []NavigationItem) []string {
		var out []string
		for _, i := range items {
			out = append(out, i.Name)
		}
		return out
	}

	t.Run("admin drimsoft sees the whole sidebar", func(t *testing.T) {
		p := &auth.Principal{Role: auth.RoleAdminDrimsoft}
		assert.Len(t, VisibleNavigation(p), len(Navigation))
	})

	t.Run("member sees no audit or configuration", func(t *testing.T) {
		p := &auth.Principal{Role: auth.RoleMember}
		assert.Equal(t, []string{"Dashboard", "Organizaciones", "Proyectos", "Usuarios", "Reportes"}, names(VisibleNavigation(p)))
	})

	t.Run("viewer", func(t *testing.T) {
		p := &auth.Principal{Role: auth.RoleViewer}
		assert.Equal(t, []string{"Organizaciones", "Proyectos", "Reportes"}, names(VisibleNavigation(p)))
	})

	t.Run("no principal sees nothing", func(t *testing.T) {
		items := VisibleNavigation(nil)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestDefaultSystemConfig(t *testing.T) {
	cfg := DefaultSystemConfig()
	assert.Equal(t, "Planifika", cfg.General.PlatformName)
	assert.Equal(t, 8, cfg.Security.SessionTimeoutHours)
	assert.Equal(t, 30, cfg.Database.RetentionDays)

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "api_key")
}
