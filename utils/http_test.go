package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"message": "test"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]string{"role": "viewer"}))
	assert.Equal(t, http.StatusOK, w.Code)

	var response SuccessResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "viewer", response.Data.(map[string]interface{})["role"])
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteCreated(w, map[string]string{"id": "123"}))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWriteNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteNoContent(w)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestWritePage(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WritePage(w, []string{"a", "b"}, NewPagination(2, 2, 5)))
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data       []string   `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, []string{"a", "b"}, response.Data)
	assert.Equal(t, Pagination{Page: 2, Limit: 2, Total: 5, TotalPages: 3}, response.Pagination)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		total int
		pages int
	}{
		{"exact", 20, 40, 2},
		{"remainder", 20, 41, 3},
		{"empty", 20, 0, 0},
		{"zero limit", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pages, NewPagination(1, tt.limit, tt.total).TotalPages)
		})
	}
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter) error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "bad request",
			write:       func(w http.ResponseWriter) error { return WriteBadRequest(w, "Invalid body", nil) },
			wantStatus:  http.StatusBadRequest,
			wantError:   "bad_request",
			wantMessage: "Invalid body",
		},
		{
			name:        "unauthorized default message",
			write:       func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus:  http.StatusUnauthorized,
			wantError:   "unauthorized",
			wantMessage: "Authentication required",
		},
		{
			name:        "forbidden custom message",
			write:       func(w http.ResponseWriter) error { return WriteForbidden(w, "Insufficient permissions", nil) },
			wantStatus:  http.StatusForbidden,
			wantError:   "forbidden",
			wantMessage: "Insufficient permissions",
		},
		{
			name:        "forbidden default message",
			write:       func(w http.ResponseWriter) error { return WriteForbidden(w, "", nil) },
			wantStatus:  http.StatusForbidden,
			wantError:   "forbidden",
			wantMessage: "Access forbidden",
		},
		{
			name:        "not found default message",
			write:       func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			wantStatus:  http.StatusNotFound,
			wantError:   "not_found",
			wantMessage: "Resource not found",
		},
		{
			name:        "conflict",
			write:       func(w http.ResponseWriter) error { return WriteConflict(w, "Concurrent update", nil) },
			wantStatus:  http.StatusConflict,
			wantError:   "conflict",
			wantMessage: "Concurrent update",
		},
		{
			name:        "too many requests default message",
			write:       func(w http.ResponseWriter) error { return WriteTooManyRequests(w, "", nil) },
			wantStatus:  http.StatusTooManyRequests,
			wantError:   "rate_limit_exceeded",
			wantMessage: "Rate limit exceeded",
		},
		{
			name:        "internal server error default message",
			write:       func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.wantError, response.Error)
			assert.Equal(t, tt.wantMessage, response.Message)
		})
	}
}

func TestWriteForbidden_Details(t *testing.T) {
	w := httptest.NewRecorder()
	require.NoError(t, WriteForbidden(w, "", map[string]interface{}{"required_permission": "audit:read"}))

	response := decodeError(t, w)
	assert.Equal(t, "audit:read", response.Details["required_permission"])
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		status    int
		wantError string
	}{
		{http.StatusBadRequest, "bad_request"},
		{http.StatusUnauthorized, "unauthorized"},
		{http.StatusForbidden, "forbidden"},
		{http.StatusNotFound, "not_found"},
		{http.StatusConflict, "conflict"},
		{http.StatusTooManyRequests, "rate_limit_exceeded"},
		{http.StatusServiceUnavailable, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, WriteError(w, tt.status, "message", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.wantError, decodeError(t, w).Error)
		})
	}
}
