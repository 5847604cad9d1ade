package repositories

import (
	"context"
	"errors"

	"github.com/drimsoft/planifika-admin/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when a lookup matches nothing
var ErrNotFound = errors.New("record not found")

// AuditRepository handles audit log data operations
type AuditRepository interface {
	// Insert inserts a new audit log entry
	Insert(ctx context.Context, log *models.AuditLog) error

	// GetByID retrieves an audit log by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error)

	// List retrieves audit logs matching the filter, newest first
	List(ctx context.Context, filter models.AuditFilter, limit, offset int) ([]*models.AuditLog, error)

	// Count returns the number of audit logs matching the filter
	Count(ctx context.Context, filter models.AuditFilter) (int, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	AuditLogs AuditRepository
}
