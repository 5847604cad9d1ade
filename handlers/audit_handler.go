package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/drimsoft/planifika-admin/internal/auth"
	"github.com/drimsoft/planifika-admin/middleware"
	"github.com/drimsoft/planifika-admin/models"
	"github.com/drimsoft/planifika-admin/repositories"
	"github.com/drimsoft/planifika-admin/services"
	"github.com/drimsoft/planifika-admin/services/audit"
	"github.com/drimsoft/planifika-admin/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// maxPage keeps (page-1)*limit within int
	maxPage = math.MaxInt / maxPageSize
)

// ExportAuditor records audit exports
type ExportAuditor interface {
	LogAuditExported(p *auth.Principal, rows int, meta audit.RequestMeta) error
}

// AuditHandler serves the audit trail
type AuditHandler struct {
	repo    repositories.AuditRepository
	auditor ExportAuditor
	logger  *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(repo repositories.AuditRepository, auditor ExportAuditor, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

// HandleList handles GET /api/v1/audit/logs
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	page, limit, err := parsePage(r)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	total, err := h.repo.Count(r.Context(), filter)
	if err != nil {
		HandleServiceError(w, services.WrapInternal("failed to count audit logs", err), h.logger)
		return
	}

	logs, err := h.repo.List(r.Context(), filter, limit, (page-1)*limit)
	if err != nil {
		HandleServiceError(w, services.WrapInternal("failed to list audit logs", err), h.logger)
		return
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}

	_ = utils.WritePage(w, logs, utils.NewPagination(page, limit, total))
}

// HandleGet handles GET /api/v1/audit/logs/{id}
func (h *AuditHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid audit log ID", nil)
		return
	}

	log, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			HandleServiceError(w, services.ErrAuditLogNotFound, h.logger)
			return
		}
		HandleServiceError(w, services.WrapInternal("failed to get audit log", err), h.logger)
		return
	}

	_ = utils.WriteOK(w, log)
}

// HandleExport handles GET /api/v1/audit/export. It streams every entry
// matching the filter as CSV.
func (h *AuditHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAuditFilter(r)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	logs, err := h.repo.List(r.Context(), filter, 0, 0)
	if err != nil {
		HandleServiceError(w, services.WrapInternal("failed to export audit logs", err), h.logger)
		return
	}

	filename := fmt.Sprintf("audit-%s.csv", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "timestamp", "actor", "action", "entity", "entity_id", "severity", "ip_address", "request_id"})
	for _, l := range logs {
		_ = cw.Write([]string{
			l.ID.String(),
			l.Timestamp.Format(time.RFC3339),
			l.Actor,
			string(l.Action),
			l.Entity,
			l.EntityID,
			string(l.Severity),
			l.IPAddress,
			l.RequestID,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write audit export", zap.Error(err))
		return
	}

	principal := middleware.GetPrincipalFromContext(r.Context())
	if err := h.auditor.LogAuditExported(principal, len(logs), middleware.RequestMeta(r)); err != nil {
		h.logger.Warn("failed to record audit export", zap.Error(err))
	}
}

func parseAuditFilter(r *http.Request) (models.AuditFilter, error) {
	q := r.URL.Query()
	filter := models.AuditFilter{
		Actor:  strings.TrimSpace(q.Get("actor")),
		Action: models.AuditAction(strings.TrimSpace(q.Get("action"))),
	}
	fields := make(map[string]string)

	if raw := q.Get("severity"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s := models.AuditSeverity(strings.TrimSpace(part))
			if s == "" {
				continue
			}
			if !s.Valid() {
				fields["severity"] = fmt.Sprintf("unknown severity %q", s)
				break
			}
			filter.Severities = append(filter.Severities, s)
		}
	}

	var err error
	if filter.Since, err = parseTime(q.Get("since")); err != nil {
		fields["since"] = "since must be an RFC3339 timestamp"
	}
	if filter.Until, err = parseTime(q.Get("until")); err != nil {
		fields["until"] = "until must be an RFC3339 timestamp"
	}
	if !filter.Since.IsZero() && !filter.Until.IsZero() && filter.Until.Before(filter.Since) {
		fields["until"] = "until must not be before since"
	}

	if len(fields) > 0 {
		return filter, &utils.ValidationError{Message: "Invalid audit filter", Fields: fields}
	}
	return filter, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parsePage(r *http.Request) (page, limit int, err error) {
	q := r.URL.Query()
	page, limit = 1, defaultPageSize
	fields := make(map[string]string)

	if raw := q.Get("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			fields["page"] = "page must be a positive integer"
		} else if page > maxPage {
			fields["page"] = fmt.Sprintf("page must not exceed %d", maxPage)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			fields["limit"] = "limit must be a positive integer"
		} else if limit > maxPageSize {
			limit = maxPageSize
		}
	}

	if len(fields) > 0 {
		return 0, 0, &utils.ValidationError{Message: "Invalid pagination", Fields: fields}
	}
	return page, limit, nil
}
