package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionLogin          AuditAction = "login"
	AuditActionLoginRejected  AuditAction = "login_rejected"
	AuditActionLogout         AuditAction = "logout"
	AuditActionSessionRefresh AuditAction = "session_refreshed"
	AuditActionRoleChanged    AuditAction = "role_changed"
	AuditActionAccessDenied   AuditAction = "access_denied"
	AuditActionAuditExported  AuditAction = "audit_exported"
)

// AuditSeverity ranks audit entries for the audit screen
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "Low"
	SeverityMedium   AuditSeverity = "Medium"
	SeverityHigh     AuditSeverity = "High"
	SeverityCritical AuditSeverity = "Critical"
)

// Valid reports whether the severity is known
func (s AuditSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID        uuid.UUID       `json:"id"`
	Actor     string          `json:"actor"` // e-mail of the acting principal, "anonymous" when none
	ActorID   string          `json:"actor_id,omitempty"`
	Action    AuditAction     `json:"action"`
	Entity    string          `json:"entity"` // session, role, route, audit
	EntityID  string          `json:"entity_id,omitempty"`
	Severity  AuditSeverity   `json:"severity"`
	Details   json.RawMessage `json:"details,omitempty"`
	IPAddress string          `json:"ip_address,omitempty"`
	UserAgent string          `json:"user_agent,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, entity string, severity AuditSeverity) *AuditLog {
	return &AuditLog{
		ID:        uuid.New(),
		Actor:     "anonymous",
		Action:    action,
		Entity:    entity,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
	}
}

// WithActor sets the acting principal
func (a *AuditLog) WithActor(id, email string) *AuditLog {
	a.ActorID = id
	if email != "" {
		a.Actor = email
	}
	return a
}

// WithEntity sets the entity ID
func (a *AuditLog) WithEntity(entityID string) *AuditLog {
	a.EntityID = entityID
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress, userAgent string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	a.UserAgent = userAgent
	return a
}

// AuditFilter narrows an audit listing. Zero fields match everything.
type AuditFilter struct {
	Actor      string
	Action     AuditAction
	Severities []AuditSeverity
	Since      time.Time
	Until      time.Time
}

// Matches reports whether the entry satisfies the filter
func (f AuditFilter) Matches(log *AuditLog) bool {
	if f.Actor != "" && log.Actor != f.Actor && log.ActorID != f.Actor {
		return false
	}
	if f.Action != "" && log.Action != f.Action {
		return false
	}
	if len(f.Severities) > 0 {
		found := false
		for _, s := range f.Severities {
			if log.Severity == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.Since.IsZero() && log.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && log.Timestamp.After(f.Until) {
		return false
	}
	return true
}
