package services

import (
	"context"
	"errors"
	"strings"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/internal/session"
	"github.com/drimsoft/planifika-admin/services/audit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionAuditor records session lifecycle events
type SessionAuditor interface {
	LogLogin(p *auth.Principal, sessionID string, meta audit.RequestMeta) error
	LogLoginRejected(email string, meta audit.RequestMeta) error
	LogLogout(p *auth.Principal, sessionID string, meta audit.RequestMeta) error
	LogSessionRefreshed(p *auth.Principal, sessionID string, meta audit.RequestMeta) error
	LogRoleChanged(actor *auth.Principal, sessionID string, from, to auth.Role, meta audit.RequestMeta) error
}

// LoginInput is the identity asserted at login. The role is never part of
// it; it comes from the store's assignments.
type LoginInput struct {
	Email          string `json:"email" validate:"required,email,max=254"`
	Name           string `json:"name" validate:"required,min=1,max=120"`
	OrganizationID string `json:"organization_id,omitempty" validate:"omitempty,max=64"`
	Avatar         string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// SessionService runs the login, logout, refresh and role-change flows
type SessionService struct {
	store         *session.Store
	auditor       SessionAuditor
	allowedDomain string
	logger        *zap.Logger
}

// NewSessionService creates a session service. An empty allowedDomain
// accepts every e-mail domain.
func NewSessionService(store *session.Store, auditor SessionAuditor, allowedDomain string, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:         store,
		auditor:       auditor,
		allowedDomain: strings.ToLower(strings.TrimPrefix(allowedDomain, "@")),
		logger:        logger,
	}
}

// principalNamespace scopes principal IDs derived from e-mail addresses
var principalNamespace = uuid.MustParse("6f1c1c1e-52a3-4f7e-9a54-0d1b7c0f2a11")

// PrincipalID returns the stable principal ID of an e-mail address
func PrincipalID(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	return uuid.NewSHA1(principalNamespace, []byte(email)).String()
}

// AssignRoles seeds the roles of known e-mail addresses
func (s *SessionService) AssignRoles(assignments map[string]auth.Role) error {
	for email, role := range assignments {
		if err := s.store.Assign(PrincipalID(email), role); err != nil {
			return WrapError(ErrorTypeValidation, "invalid role assignment for "+email, err)
		}
	}
	return nil
}

// Login opens a session for an e-mail in the allowed domain
func (s *SessionService) Login(ctx context.Context, in LoginInput, meta audit.RequestMeta) (*session.Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !s.domainAllowed(email) {
		s.logger.Warn("login rejected by domain restriction", zap.String("email", email))
		s.record(s.auditor.LogLoginRejected(email, meta))
		return nil, ErrAccessRestricted
	}

	sess := s.store.Create(auth.Principal{
		ID:             PrincipalID(email),
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		OrganizationID: in.OrganizationID,
		Avatar:         in.Avatar,
	})

	s.record(s.auditor.LogLogin(sess.Principal(), sess.ID.String(), meta))
	return sess, nil
}

// Current returns a live session
func (s *SessionService) Current(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, mapSessionError(err)
	}
	return sess, nil
}

// Logout closes a session
func (s *SessionService) Logout(ctx context.Context, id uuid.UUID, meta audit.RequestMeta) error {
	sess, err := s.store.Get(id)
	if err != nil {
		return mapSessionError(err)
	}
	s.store.Delete(id)
	s.record(s.auditor.LogLogout(sess.Principal(), id.String(), meta))
	return nil
}

// Refresh extends a live session by one TTL
func (s *SessionService) Refresh(ctx context.Context, id uuid.UUID, meta audit.RequestMeta) (*session.Session, error) {
	sess, err := s.store.Refresh(id)
	if err != nil {
		return nil, mapSessionError(err)
	}
	s.record(s.auditor.LogSessionRefreshed(sess.Principal(), id.String(), meta))
	return sess, nil
}

// ChangeRole sets the role of another principal through one of its
// sessions. The actor must hold user:manage_roles and every permission of
// the roles involved.
func (s *SessionService) ChangeRole(ctx context.Context, actor *auth.Principal, target uuid.UUID, role string, meta audit.RequestMeta) (*auth.Principal, error) {
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return nil, ErrUnknownRole
	}

	sess, err := s.store.Get(target)
	if err != nil {
		return nil, mapSessionError(err)
	}
	from := sess.Principal().Role

	updated, err := s.store.UpdateRole(actor, target, parsed)
	if err != nil {
		return nil, mapSessionError(err)
	}

	s.record(s.auditor.LogRoleChanged(actor, target.String(), from, parsed, meta))
	return updated, nil
}

func (s *SessionService) domainAllowed(email string) bool {
	if s.allowedDomain == "" {
		return true
	}
	return strings.HasSuffix(email, "@"+s.allowedDomain)
}

// record logs audit failures; the audited flow itself has already succeeded
func (s *SessionService) record(err error) {
	if err != nil {
		s.logger.Warn("audit event not recorded", zap.Error(err))
	}
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, session.ErrSessionExpired):
		return ErrSessionExpired
	case errors.Is(err, session.ErrNotPermitted):
		return ErrInsufficientPermissions
	case errors.Is(err, session.ErrSelfRoleChange):
		return ErrSelfRoleChange
	case errors.Is(err, session.ErrRoleEscalation):
		return ErrRoleEscalation
	case errors.Is(err, auth.ErrUnknownRole):
		return ErrUnknownRole
	default:
		return WrapInternal("session operation failed", err)
	}
}
