package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/internal/session"
	"github.com/drimsoft/planifika-admin/middleware"
	"github.com/drimsoft/planifika-admin/services"
	"github.com/drimsoft/planifika-admin/services/audit"
	"github.com/drimsoft/planifika-admin/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService defines the session flows used by SessionHandler
type SessionService interface {
	Login(ctx context.Context, in services.LoginInput, meta audit.RequestMeta) (*session.Session, error)
	Logout(ctx context.Context, id uuid.UUID, meta audit.RequestMeta) error
	Refresh(ctx context.Context, id uuid.UUID, meta audit.RequestMeta) (*session.Session, error)
	ChangeRole(ctx context.Context, actor *auth.Principal, target uuid.UUID, role string, meta audit.RequestMeta) (*auth.Principal, error)
}

// CookieConfig controls the session cookie
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// SessionResponse describes the current actor
type SessionResponse struct {
	SessionID    uuid.UUID         `json:"session_id"`
	ExpiresAt    time.Time         `json:"expires_at"`
	User         auth.Principal    `json:"user"`
	RoleName     string            `json:"role_name"`
	Permissions  []auth.Permission `json:"permissions"`
	IsAdmin      bool              `json:"is_admin"`
	IsSuperAdmin bool              `json:"is_super_admin"`
}

// ChangeRoleRequest is the body of PUT /api/v1/sessions/{id}/role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// SessionHandler handles login, logout, refresh and role changes
type SessionHandler struct {
	sessions SessionService
	cookie   CookieConfig
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions SessionService, cookie CookieConfig, logger *zap.Logger) *SessionHandler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &SessionHandler{
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
	}
}

func newSessionResponse(sess *session.Session) SessionResponse {
	p := sess.Principal()
	return SessionResponse{
		SessionID:    sess.ID,
		ExpiresAt:    sess.ExpiresAt().UTC(),
		User:         *p,
		RoleName:     p.Role.DisplayName(),
		Permissions:  auth.Permissions(p),
		IsAdmin:      auth.IsAdmin(p),
		IsSuperAdmin: auth.IsSuperAdmin(p),
	}
}

// HandleLogin handles POST /api/v1/session
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	sess, err := h.sessions.Login(r.Context(), req, middleware.RequestMeta(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("session opened",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("principal_id", sess.Principal().ID),
		zap.String("role", sess.Principal().Role.String()))

	h.setCookie(w, sess)
	_ = utils.WriteCreated(w, newSessionResponse(sess))
}

// HandleCurrent handles GET /api/v1/session
func (h *SessionHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	_ = utils.WriteOK(w, newSessionResponse(sess))
}

// HandleRefresh handles POST /api/v1/session/refresh
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	refreshed, err := h.sessions.Refresh(r.Context(), sess.ID, middleware.RequestMeta(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.setCookie(w, refreshed)
	_ = utils.WriteOK(w, newSessionResponse(refreshed))
}

// HandleLogout handles DELETE /api/v1/session
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}

	if err := h.sessions.Logout(r.Context(), sess.ID, middleware.RequestMeta(r)); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteNoContent(w)
}

// HandleChangeRole handles PUT /api/v1/sessions/{id}/role
func (h *SessionHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	target, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid session ID", nil)
		return
	}

	var req ChangeRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	actor := middleware.GetPrincipalFromContext(r.Context())
	updated, err := h.sessions.ChangeRole(r.Context(), actor, target, req.Role, middleware.RequestMeta(r))
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"session_id":  target,
		"user":        updated,
		"permissions": auth.Permissions(updated),
	})
}

func (h *SessionHandler) setCookie(w http.ResponseWriter, sess *session.Session) {
	maxAge := int(time.Until(sess.ExpiresAt()).Seconds())
	if h.cookie.MaxAge > 0 && maxAge > int(h.cookie.MaxAge.Seconds()) {
		maxAge = int(h.cookie.MaxAge.Seconds())
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sess.ID.String(),
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
