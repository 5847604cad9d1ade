package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/repositories"
	"go.uber.org/zap"
)

// AuditEvent represents an event to be audited
type AuditEvent struct {
	Log *models.AuditLog
}

// RequestMeta carries the HTTP request attributes recorded with an event
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// AuditService handles asynchronous audit logging
type AuditService struct {
	auditRepo   repositories.AuditRepository
	logger      *zap.Logger
	eventChan   chan *AuditEvent
	workerCount int
	bufferSize  int
	highWait    time.Duration
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	started     bool
	stopped     bool
	dropped     atomic.Int64
	processed   atomic.Int64
}

// Config holds configuration for the AuditService
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
	// HighSeverityWait bounds how long a High or Critical event waits for
	// buffer room before it is dropped
	HighSeverityWait time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:       1000,
		WorkerCount:      2,
		HighSeverityWait: 2 * time.Second,
	}
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.Logger, config Config) *AuditService {
	if config.BufferSize <= 0 || config.WorkerCount <= 0 {
		config = DefaultConfig()
	}
	if config.HighSeverityWait <= 0 {
		config.HighSeverityWait = DefaultConfig().HighSeverityWait
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &AuditService{
		auditRepo:   auditRepo,
		logger:      logger,
		eventChan:   make(chan *AuditEvent, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		highWait:    config.HighSeverityWait,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the background workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop gracefully stops the audit service.
// Waits for all pending events to be processed.
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("audit service not running")
	}
	s.stopped = true
	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))
	close(s.eventChan)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully",
			zap.Int64("processed", s.processed.Load()),
			zap.Int64("dropped", s.dropped.Load()))
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// LogEvent logs an event asynchronously (non-blocking).
// The event is dropped when the buffer is full.
func (s *AuditService) LogEvent(event *AuditEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.stopped {
		return fmt.Errorf("audit service not running")
	}

	select {
	case s.eventChan <- event:
		return nil
	default:
		s.dropped.Add(1)
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(event.Log.Action)),
			zap.String("actor", event.Log.Actor))
		return fmt.Errorf("audit event buffer full")
	}
}

// LogEventBlocking waits until the event is queued or ctx is cancelled
func (s *AuditService) LogEventBlocking(ctx context.Context, event *AuditEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || s.stopped {
		return fmt.Errorf("audit service not running")
	}

	select {
	case s.eventChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return fmt.Errorf("audit service stopped")
	}
}

// worker processes events from the channel
func (s *AuditService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for event := range s.eventChan {
		if err := s.processEvent(event); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Log.Action)),
				zap.String("actor", event.Log.Actor))
			continue
		}
		s.processed.Add(1)
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

// processEvent processes a single audit event
func (s *AuditService) processEvent(event *AuditEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.auditRepo.Insert(ctx, event.Log); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetStats returns statistics about the audit service
func (s *AuditService) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started && !s.stopped,
		Processed:     s.processed.Load(),
		Dropped:       s.dropped.Load(),
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int   `json:"buffer_size"`
	PendingEvents int   `json:"pending_events"`
	WorkerCount   int   `json:"worker_count"`
	Started       bool  `json:"started"`
	Processed     int64 `json:"processed"`
	Dropped       int64 `json:"dropped"`
}

// Convenience methods for logging common events

// emit queues the entry. High and Critical entries wait for buffer room
// up to highWait; the rest are dropped when the buffer is full.
func (s *AuditService) emit(log *models.AuditLog, meta RequestMeta) error {
	log.WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent)
	event := &AuditEvent{Log: log}

	if log.Severity != models.SeverityHigh && log.Severity != models.SeverityCritical {
		return s.LogEvent(event)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.highWait)
	defer cancel()
	if err := s.LogEventBlocking(ctx, event); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.dropped.Add(1)
			s.logger.Error("audit event not queued in time, dropping event",
				zap.String("action", string(log.Action)),
				zap.String("actor", log.Actor))
		}
		return err
	}
	return nil
}

func withPrincipal(log *models.AuditLog, p *auth.Principal) *models.AuditLog {
	if p != nil {
		log.WithActor(p.ID, p.Email)
	}
	return log
}

// LogLogin logs a successful login
func (s *AuditService) LogLogin(p *auth.Principal, sessionID string, meta RequestMeta) error {
	log := withPrincipal(models.NewAuditLog(models.AuditActionLogin, "session", models.SeverityLow), p)
	log.WithEntity(sessionID)
	if p != nil {
		log.WithDetails(map[string]interface{}{"role": p.Role})
	}
	return s.emit(log, meta)
}

// LogLoginRejected logs a login refused by the e-mail domain restriction
func (s *AuditService) LogLoginRejected(email string, meta RequestMeta) error {
	log := models.NewAuditLog(models.AuditActionLoginRejected, "session", models.SeverityMedium)
	log.WithDetails(map[string]interface{}{"email": email})
	return s.emit(log, meta)
}

// LogLogout logs a logout
func (s *AuditService) LogLogout(p *auth.Principal, sessionID string, meta RequestMeta) error {
	log := withPrincipal(models.NewAuditLog(models.AuditActionLogout, "session", models.SeverityLow), p)
	log.WithEntity(sessionID)
	return s.emit(log, meta)
}

// LogSessionRefreshed logs a session expiry extension
func (s *AuditService) LogSessionRefreshed(p *auth.Principal, sessionID string, meta RequestMeta) error {
	log := withPrincipal(models.NewAuditLog(models.AuditActionSessionRefresh, "session", models.SeverityLow), p)
	log.WithEntity(sessionID)
	return s.emit(log, meta)
}

// LogRoleChanged logs a role update applied by actor to a session
func (s *AuditService) LogRoleChanged(actor *auth.Principal, sessionID string, from, to auth.Role, meta RequestMeta) error {
	log := withPrincipal(models.NewAuditLog(models.AuditActionRoleChanged, "session", models.SeverityHigh), actor)
	log.WithEntity(sessionID)
	log.WithDetails(map[string]interface{}{"from": from, "to": to})
	return s.emit(log, meta)
}

// LogAccessDenied logs a request refused by an authorization requirement
func (s *AuditService) LogAccessDenied(p *auth.Principal, route string, req auth.Requirement, decision auth.Decision, meta RequestMeta) error {
	log := withPrincipal(models.NewAuditLog(models.AuditActionAccessDenied, "route", models.SeverityMedium), p)
	log.WithEntity(route)
	log.WithDetails(map[string]interface{}{
		"required_role":       req.Role,
		"required_permission": req.Permission,
		"reason":              decision.Reason,
	})
	return s.emit(log, meta)
}

// LogAuditExported logs a CSV export of the audit trail
func (s *AuditService) LogAuditExported(p *auth.Principal, rows int, meta RequestMeta) error {
	log := withPrincipal(models.NewAuditLog(models.AuditActionAuditExported, "audit", models.SeverityHigh), p)
	log.WithDetails(map[string]interface{}{"rows": rows})
	return s.emit(log, meta)
}
