package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/drimsoft/planifika-admin/internal/session"
	"github.com/drimsoft/planifika-admin/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionLookup resolves a session ID to a live session
type SessionLookup interface {
	Get(id uuid.UUID) (*session.Session, error)
}

// SessionMiddleware attaches the caller's session to the request context
type SessionMiddleware struct {
	sessions   SessionLookup
	cookieName string
	logger     *zap.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(sessions SessionLookup, cookieName string, logger *zap.Logger) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "session"
	}
	return &SessionMiddleware{
		sessions:   sessions,
		cookieName: cookieName,
		logger:     logger,
	}
}

// RequireSession rejects requests without a live session with 401
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := m.extractToken(r)
		if token == "" {
			m.logger.Debug("missing session token", zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		sess, err := m.lookup(token)
		if err != nil {
			m.logger.Warn("session lookup failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			message := "Invalid session"
			if errors.Is(err, session.ErrSessionExpired) {
				message = "Session expired"
			}
			_ = utils.WriteUnauthorized(w, message)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sess)))
	})
}

// LoadSession attaches a session when one is presented and otherwise
// lets the request through anonymously
func (m *SessionMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := m.extractToken(r); token != "" {
			if sess, err := m.lookup(token); err == nil {
				r = r.WithContext(WithSession(r.Context(), sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionMiddleware) lookup(token string) (*session.Session, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, session.ErrSessionNotFound
	}
	return m.sessions.Get(id)
}

// extractToken reads the session ID from the Authorization header
// ("Bearer <id>") or the session cookie. The header takes precedence.
func (m *SessionMiddleware) extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
