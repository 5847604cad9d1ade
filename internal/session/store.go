// Package session is the in-memory session provider. It owns the current
// principal of every open session and is the only writer of that state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrNotPermitted    = errors.New("actor may not change roles")
	ErrSelfRoleChange  = errors.New("actor may not change its own role")
	ErrRoleEscalation  = errors.New("role exceeds the actor's permissions")
)

// Session holds one authenticated principal. The principal is swapped as a
// whole, so a reader sees either the old or the new role, never a mix.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	principal atomic.Pointer[auth.Principal]
	expiresAt atomic.Int64 // unix nanoseconds
}

// Principal returns the current snapshot. Callers must not mutate it.
func (s *Session) Principal() *auth.Principal {
	return s.principal.Load()
}

// ExpiresAt returns the current expiry
func (s *Session) ExpiresAt() time.Time {
	return time.Unix(0, s.expiresAt.Load())
}

func (s *Session) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt())
}

// Config holds store settings
type Config struct {
	TTL time.Duration
}

// Store is safe for concurrent use. Besides open sessions it keeps the
// role assigned to each principal ID, so a role outlives the session it
// was changed on.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	roles    map[string]auth.Role
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewStore creates an empty store
func NewStore(cfg Config, logger *zap.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		roles:    make(map[string]auth.Role),
		ttl:      cfg.TTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Assign records the role of a principal ID. Sessions opened afterwards
// carry it; open sessions are left alone.
func (s *Store) Assign(principalID string, role auth.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", auth.ErrUnknownRole, role)
	}
	s.mu.Lock()
	s.roles[principalID] = role
	s.mu.Unlock()
	return nil
}

// Create opens a session for the principal. An assigned role replaces the
// principal's own; a principal with neither gets auth.DefaultRole.
func (s *Store) Create(principal auth.Principal) *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
	}
	sess.expiresAt.Store(now.Add(s.ttl).UnixNano())

	s.mu.Lock()
	if role, ok := s.roles[principal.ID]; ok {
		principal.Role = role
	} else if principal.Role == "" {
		principal.Role = auth.DefaultRole
	}
	sess.principal.Store(&principal)
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug("session created",
		zap.String("session_id", sess.ID.String()),
		zap.String("principal_id", principal.ID),
		zap.String("role", principal.Role.String()))
	return sess
}

// Get returns a live session
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.expired(s.now()) {
		s.Delete(id)
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Delete closes a session. Deleting an unknown session is not an error.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.logger.Debug("session deleted", zap.String("session_id", id.String()))
	}
	return ok
}

// Refresh pushes the expiry of a live session one TTL into the future
func (s *Store) Refresh(id uuid.UUID) (*Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sess.expiresAt.Store(s.now().Add(s.ttl).UnixNano())
	return sess, nil
}

// UpdateRole changes the role of the session's principal. The actor must
// hold user:manage_roles and every permission of both the current and the
// new role, and may not target its own principal. The role is recorded for
// the principal and applied to all of its open sessions; the change is
// visible to the next check.
func (s *Store) UpdateRole(actor *auth.Principal, id uuid.UUID, role auth.Role) (*auth.Principal, error) {
	if !auth.HasPermission(actor, auth.PermissionUserManageRoles) {
		return nil, ErrNotPermitted
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", auth.ErrUnknownRole, role)
	}
	if !auth.CanGrant(actor, role) {
		return nil, fmt.Errorf("%w: %s", ErrRoleEscalation, role)
	}

	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	// Writers serialize on mu so the assignment and the swaps stay in step
	s.mu.Lock()
	defer s.mu.Unlock()

	current := sess.principal.Load()
	if current.ID == actor.ID {
		return nil, ErrSelfRoleChange
	}
	if !auth.CanGrant(actor, current.Role) {
		return nil, fmt.Errorf("%w: %s", ErrRoleEscalation, current.Role)
	}

	s.roles[current.ID] = role
	updated := swapRole(sess, role)
	for _, other := range s.sessions {
		if other != sess && other.principal.Load().ID == current.ID {
			swapRole(other, role)
		}
	}

	s.logger.Info("session role updated",
		zap.String("session_id", id.String()),
		zap.String("principal_id", current.ID),
		zap.String("actor_id", actor.ID),
		zap.String("from", current.Role.String()),
		zap.String("to", role.String()))
	return updated, nil
}

func swapRole(sess *Session, role auth.Role) *auth.Principal {
	for {
		current := sess.principal.Load()
		updated := current.WithRole(role)
		if sess.principal.CompareAndSwap(current, updated) {
			return updated
		}
	}
}

// Len returns the number of stored sessions, expired ones included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions expired at now and returns how many were removed
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is cancelled
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Info("expired sessions swept", zap.Int("removed", n))
			}
		}
	}
}
