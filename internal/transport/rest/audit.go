package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/audit"
)

type auditService interface {
	List(ctx context.Context, f domain.AuditFilter) (audit.Page, error)
	ByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (audit.Page, error)
	Stats(ctx context.Context) (domain.AuditStats, error)
	Cleanup(ctx context.Context, olderThanDays int) (int, error)
}

// AuditHandler serves the audit log endpoints.
type AuditHandler struct {
	svc  auditService
	bind *binder
	log  *slog.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(svc auditService, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{svc: svc, bind: newBinder(0), log: logger.With("handler", "audit")}
}

type auditEntryResponse struct {
	ID        uuid.UUID            `json:"id"`
	ActorID   *uuid.UUID           `json:"actorId,omitempty"`
	Action    domain.AuditAction   `json:"action"`
	Resource  domain.AuditResource `json:"resource"`
	TargetID  *string              `json:"targetId,omitempty"`
	Details   map[string]any       `json:"details,omitempty"`
	IPAddress *string              `json:"ipAddress,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

func toAuditPage(p audit.Page, limit, offset int) pageResponse[auditEntryResponse] {
	items := make([]auditEntryResponse, 0, len(p.Items))
	for _, e := range p.Items {
		items = append(items, auditEntryResponse{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Action:    e.Action,
			Resource:  e.Resource,
			TargetID:  e.TargetID,
			Details:   e.Details,
			IPAddress: e.IPAddress,
			CreatedAt: e.CreatedAt,
		})
	}
	return pageResponse[auditEntryResponse]{Items: items, Total: p.Total, Limit: limit, Offset: offset}
}

type auditStatsResponse struct {
	Total      int            `json:"total"`
	Last24h    int            `json:"last24h"`
	Last7d     int            `json:"last7d"`
	ByAction   map[string]int `json:"byAction"`
	ByResource map[string]int `json:"byResource"`
}

type cleanupRequest struct {
	OlderThanDays int `json:"olderThanDays" validate:"required"`
}

// List GET /api/admin/audit-logs?actorId=&action=&resource=&from=&to=&limit=&offset=
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r)
	f := domain.AuditFilter{
		ActorID:  q.uuid("actorId"),
		Action:   enumPtr[domain.AuditAction](q.optStr("action")),
		Resource: enumPtr[domain.AuditResource](q.optStr("resource")),
		From:     q.time("from"),
		To:       q.time("to"),
	}
	f.Limit, f.Offset = q.page()
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	page, err := h.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditPage(page, f.Limit, f.Offset))
}

// ByUser GET /api/admin/audit-logs/users/{id}
func (h *AuditHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	q := newQuery(r)
	limit, offset := q.page()
	if err := q.err(); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	page, err := h.svc.ByUser(r.Context(), id, limit, offset)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAuditPage(page, limit, offset))
}

// Stats GET /api/admin/audit-logs/stats
func (h *AuditHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	resp := auditStatsResponse{
		Total:      st.Total,
		Last24h:    st.Last24h,
		Last7d:     st.Last7d,
		ByAction:   make(map[string]int, len(st.ByAction)),
		ByResource: make(map[string]int, len(st.ByResource)),
	}
	for k, v := range st.ByAction {
		resp.ByAction[string(k)] = v
	}
	for k, v := range st.ByResource {
		resp.ByResource[string(k)] = v
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cleanup POST /api/admin/audit-logs/cleanup
func (h *AuditHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	n, err := h.svc.Cleanup(r.Context(), req.OlderThanDays)
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
