package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drimsoft/planifika-admin/services/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticStats audit.Stats

func (s staticStats) GetStats() audit.Stats { return audit.Stats(s) }

func TestHandleHealth(t *testing.T) {
	handler := NewHealthHandler(staticStats{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.HandleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	decodeData(t, w, &response)
	assert.Equal(t, "healthy", response.Status)
	assert.NotEmpty(t, response.Timestamp)
}

func TestHandleReadiness(t *testing.T) {
	tests := []struct {
		name       string
		stats      audit.Stats
		wantStatus int
		wantAudit  string
	}{
		{
			name:       "audit pipeline running",
			stats:      audit.Stats{Started: true, BufferSize: 10, PendingEvents: 3},
			wantStatus: http.StatusOK,
			wantAudit:  "healthy",
		},
		{
			name:       "audit pipeline stopped",
			stats:      audit.Stats{Started: false, BufferSize: 10},
			wantStatus: http.StatusServiceUnavailable,
			wantAudit:  "unhealthy",
		},
		{
			name:       "audit buffer full",
			stats:      audit.Stats{Started: true, BufferSize: 10, PendingEvents: 10},
			wantStatus: http.StatusServiceUnavailable,
			wantAudit:  "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(staticStats(tt.stats), zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			w := httptest.NewRecorder()

			handler.HandleReadiness(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

			data := response["data"].(map[string]interface{})
			checks := data["checks"].(map[string]interface{})
			assert.Equal(t, tt.wantAudit, checks["audit"])
		})
	}
}

func TestHandleAuditStats(t *testing.T) {
	stats := audit.Stats{Started: true, BufferSize: 10, WorkerCount: 2, Processed: 7, Dropped: 1}
	handler := NewHealthHandler(staticStats(stats), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/stats", nil)
	w := httptest.NewRecorder()

	handler.HandleAuditStats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got audit.Stats
	decodeData(t, w, &got)
	assert.Equal(t, stats, got)
}
