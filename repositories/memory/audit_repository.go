// Package memory holds in-process repository implementations. Contents do
// not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditRepository implements the repositories.AuditRepository interface.
// It keeps at most capacity entries and drops the oldest once full.
type AuditRepository struct {
	mu       sync.RWMutex
	logs     []*models.AuditLog // oldest first
	byID     map[uuid.UUID]*models.AuditLog
	capacity int
	logger   *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(capacity int, logger *zap.Logger) *AuditRepository {
	if capacity <= 0 {
		capacity = 10000
	}
	return &AuditRepository{
		byID:     make(map[uuid.UUID]*models.AuditLog),
		capacity: capacity,
		logger:   logger,
	}
}

var _ repositories.AuditRepository = (*AuditRepository)(nil)

// Insert inserts a new audit log entry
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if log == nil || log.ID == uuid.Nil {
		return fmt.Errorf("audit log must have an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[log.ID]; exists {
		return fmt.Errorf("audit log already exists: %s", log.ID)
	}

	if len(r.logs) >= r.capacity {
		oldest := r.logs[0]
		delete(r.byID, oldest.ID)
		r.logs[0] = nil
		r.logs = r.logs[1:]
	}

	r.logs = append(r.logs, log)
	r.byID[log.ID] = log

	r.logger.Debug("audit log inserted", zap.String("id", log.ID.String()), zap.String("action", string(log.Action)))
	return nil
}

// GetByID retrieves an audit log by ID
func (r *AuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	log, ok := r.byID[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("audit log %s: %w", id, repositories.ErrNotFound)
	}
	return log, nil
}

// List retrieves audit logs matching the filter, newest first. A
// non-positive limit returns every match past offset.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter, limit, offset int) ([]*models.AuditLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*models.AuditLog{}
	skipped := 0
	for i := len(r.logs) - 1; i >= 0; i-- {
		log := r.logs[i]
		if !filter.Matches(log) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, log)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns the number of audit logs matching the filter
func (r *AuditRepository) Count(ctx context.Context, filter models.AuditFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, log := range r.logs {
		if filter.Matches(log) {
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries
func (r *AuditRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs)
}
