package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func entry(i int, action models.AuditAction, severity models.AuditSeverity, actor string) *models.AuditLog {
	log := models.NewAuditLog(action, "session", severity).WithActor(fmt.Sprintf("u-%d", i), actor)
	log.Timestamp = base.Add(time.Duration(i) * time.Minute)
	return log
}

func seed(t *testing.T, repo *AuditRepository, logs ...*models.AuditLog) {
	t.Helper()
	for _, l := range logs {
		require.NoError(t, repo.Insert(context.Background(), l))
	}
}

func TestAuditRepository_InsertAndGet(t *testing.T) {
	repo := NewAuditRepository(10, zap.NewNop())
	log := entry(1, models.AuditActionLogin, models.SeverityLow, "ana@drimsoft.com")
	seed(t, repo, log)

	got, err := repo.GetByID(context.Background(), log.ID)
	require.NoError(t, err)
	assert.Equal(t, log, got)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestAuditRepository_InsertRejects(t *testing.T) {
	repo := NewAuditRepository(10, zap.NewNop())

	t.Run("nil id", func(t *testing.T) {
		assert.Error(t, repo.Insert(context.Background(), &models.AuditLog{}))
	})

	t.Run("duplicate id", func(t *testing.T) {
		log := entry(1, models.AuditActionLogin, models.SeverityLow, "ana@drimsoft.com")
		require.NoError(t, repo.Insert(context.Background(), log))
		assert.Error(t, repo.Insert(context.Background(), log))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := repo.Insert(ctx, entry(2, models.AuditActionLogin, models.SeverityLow, ""))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAuditRepository_CapacityDropsOldest(t *testing.T) {
	repo := NewAuditRepository(3, zap.NewNop())
	var logs []*models.AuditLog
	for i := 0; i < 5; i++ {
		logs = append(logs, entry(i, models.AuditActionLogin, models.SeverityLow, "ana@drimsoft.com"))
	}
	seed(t, repo, logs...)

	assert.Equal(t, 3, repo.Len())
	_, err := repo.GetByID(context.Background(), logs[0].ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByID(context.Background(), logs[4].ID)
	assert.NoError(t, err)
}

func TestAuditRepository_ListAndCount(t *testing.T) {
	repo := NewAuditRepository(100, zap.NewNop())
	seed(t, repo,
		entry(0, models.AuditActionLogin, models.SeverityLow, "ana@drimsoft.com"),
		entry(1, models.AuditActionAccessDenied, models.SeverityMedium, "luis@drimsoft.com"),
		entry(2, models.AuditActionRoleChanged, models.SeverityHigh, "ana@drimsoft.com"),
		entry(3, models.AuditActionAccessDenied, models.SeverityMedium, "ana@drimsoft.com"),
		entry(4, models.AuditActionLogout, models.SeverityLow, "luis@drimsoft.com"),
	)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		logs, err := repo.List(ctx, models.AuditFilter{}, 0, 0)
		require.NoError(t, err)
		require.Len(t, logs, 5)
		assert.Equal(t, models.AuditActionLogout, logs[0].Action)
		assert.Equal(t, models.AuditActionLogin, logs[4].Action)
	})

	t.Run("limit and offset", func(t *testing.T) {
		logs, err := repo.List(ctx, models.AuditFilter{}, 2, 1)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		assert.Equal(t, models.AuditActionAccessDenied, logs[0].Action)
		assert.Equal(t, models.AuditActionRoleChanged, logs[1].Action)
	})

	t.Run("offset past the end", func(t *testing.T) {
		logs, err := repo.List(ctx, models.AuditFilter{}, 10, 50)
		require.NoError(t, err)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)
	})

	t.Run("filter by actor and action", func(t *testing.T) {
		filter := models.AuditFilter{Actor: "ana@drimsoft.com", Action: models.AuditActionAccessDenied}
		logs, err := repo.List(ctx, filter, 10, 0)
		require.NoError(t, err)
		require.Len(t, logs, 1)

		n, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("count by severity", func(t *testing.T) {
		n, err := repo.Count(ctx, models.AuditFilter{Severities: []models.AuditSeverity{models.SeverityMedium, models.SeverityHigh}})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestAuditRepository_ConcurrentInsert(t *testing.T) {
	repo := NewAuditRepository(1000, zap.NewNop())
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = repo.Insert(context.Background(), entry(w*50+i, models.AuditActionLogin, models.SeverityLow, ""))
			}
		}(w)
	}
	wg.Wait()

	n, err := repo.Count(context.Background(), models.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 400, n)
}
