package middleware

import (
	"context"
	"net/http"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/internal/session"
	"github.com/drimsoft/planifika-admin/services/audit"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// SessionKey is the context key for the current session
	SessionKey contextKey = "session"
)

// GetRequestIDFromContext retrieves the request ID from context. The chi
// RequestID middleware value is used when none was set explicitly.
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return chimw.GetReqID(ctx)
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithSession adds the current session to the context
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, sess)
}

// GetSessionFromContext retrieves the current session from context
func GetSessionFromContext(ctx context.Context) *session.Session {
	if val := ctx.Value(SessionKey); val != nil {
		if sess, ok := val.(*session.Session); ok {
			return sess
		}
	}
	return nil
}

// GetPrincipalFromContext returns the current principal snapshot, or nil
// for an anonymous request. Each call reads the latest snapshot, so a role
// change is seen by the next check.
func GetPrincipalFromContext(ctx context.Context) *auth.Principal {
	if sess := GetSessionFromContext(ctx); sess != nil {
		return sess.Principal()
	}
	return nil
}

// RequestMeta collects the request attributes recorded in audit entries
func RequestMeta(r *http.Request) audit.RequestMeta {
	return audit.RequestMeta{
		RequestID: GetRequestIDFromContext(r.Context()),
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
