package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/scheduler"
)

type schedulerService interface {
	GetConfig(ctx context.Context) (domain.ScheduleConfig, error)
	UpdateConfig(ctx context.Context, input scheduler.UpdateConfigInput) (domain.ScheduleConfig, error)
	RunBackupNow(ctx context.Context) (*domain.RunResult, error)
	GetBackupStats(ctx context.Context) (scheduler.Stats, error)
}

// ScheduleHandler serves the backup schedule endpoints.
type ScheduleHandler struct {
	svc  schedulerService
	bind *binder
	log  *slog.Logger
}

// NewScheduleHandler creates a ScheduleHandler.
func NewScheduleHandler(svc schedulerService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, bind: newBinder(0), log: logger.With("handler", "schedule")}
}

type scheduleRequest struct {
	Enabled          *bool   `json:"enabled"`
	Frequency        *string `json:"frequency"        validate:"omitempty,oneof=daily weekly monthly"`
	TimeOfDay        *string `json:"timeOfDay"`
	RetentionDays    *int    `json:"retentionDays"    validate:"omitempty,min=1"`
	MaxBackups       *int    `json:"maxBackups"       validate:"omitempty,min=1"`
	IncludeAITools   *bool   `json:"includeAITools"`
	IncludeTemplates *bool   `json:"includeTemplates"`
}

func (req scheduleRequest) input() scheduler.UpdateConfigInput {
	in := scheduler.UpdateConfigInput{
		Enabled:          req.Enabled,
		TimeOfDay:        req.TimeOfDay,
		RetentionDays:    req.RetentionDays,
		MaxBackups:       req.MaxBackups,
		IncludeAITools:   req.IncludeAITools,
		IncludeTemplates: req.IncludeTemplates,
	}
	if req.Frequency != nil {
		f := domain.ScheduleFrequency(*req.Frequency)
		in.Frequency = &f
	}
	return in
}

type scheduleResponse struct {
	Enabled          bool                     `json:"enabled"`
	Frequency        domain.ScheduleFrequency `json:"frequency"`
	TimeOfDay        string                   `json:"timeOfDay"`
	RetentionDays    int                      `json:"retentionDays"`
	MaxBackups       int                      `json:"maxBackups"`
	IncludeAITools   bool                     `json:"includeAITools"`
	IncludeTemplates bool                     `json:"includeTemplates"`
	LastRunAt        *time.Time               `json:"lastRunAt,omitempty"`
	LastSuccessAt    *time.Time               `json:"lastSuccessAt,omitempty"`
	LastStatus       *domain.RunStatus        `json:"lastStatus,omitempty"`
	LastError        *string                  `json:"lastError,omitempty"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

func toScheduleResponse(c domain.ScheduleConfig) scheduleResponse {
	return scheduleResponse{
		Enabled:          c.Enabled,
		Frequency:        c.Frequency,
		TimeOfDay:        c.TimeOfDay,
		RetentionDays:    c.RetentionDays,
		MaxBackups:       c.MaxBackups,
		IncludeAITools:   c.IncludeAITools,
		IncludeTemplates: c.IncludeTemplates,
		LastRunAt:        c.LastRunAt,
		LastSuccessAt:    c.LastSuccessAt,
		LastStatus:       c.LastStatus,
		LastError:        c.LastError,
		UpdatedAt:        c.UpdatedAt,
	}
}

type runResultResponse struct {
	Success        bool       `json:"success"`
	BackupID       *uuid.UUID `json:"backupId,omitempty"`
	CleanedUpCount int        `json:"cleanedUpCount"`
	Error          string     `json:"error,omitempty"`
}

type backupStatsResponse struct {
	Count                 int                   `json:"count"`
	TotalSizeBytes        int64                 `json:"totalSizeBytes"`
	LastSuccessAt         *time.Time            `json:"lastSuccessAt,omitempty"`
	LastSuccessAgeSeconds *float64              `json:"lastSuccessAgeSeconds,omitempty"`
	NewestBackupAt        *time.Time            `json:"newestBackupAt,omitempty"`
	OldestBackupAt        *time.Time            `json:"oldestBackupAt,omitempty"`
	State                 domain.SchedulerState `json:"state"`
	Enabled               bool                  `json:"enabled"`
	NextRunAt             *time.Time            `json:"nextRunAt,omitempty"`
}

// GetConfig GET /api/admin/backup/schedule
func (h *ScheduleHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetConfig(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(cfg))
}

// UpdateConfig PUT /api/admin/backup/schedule
func (h *ScheduleHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := h.bind.decode(w, r, &req); err != nil {
		respondError(w, r, h.log, err)
		return
	}
	cfg, err := h.svc.UpdateConfig(r.Context(), req.input())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(cfg))
}

// RunNow POST /api/admin/backup/schedule/run-now
// A failed run answers 500 BACKUP_FAILED; the failure is also stored in the
// schedule's last-run fields.
func (h *ScheduleHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RunBackupNow(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrBackupFailed) && res != nil {
			h.log.WarnContext(r.Context(), "manual backup run failed", slog.String("error", res.Error))
		}
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, runResultResponse{
		Success:        res.Success,
		BackupID:       res.BackupID,
		CleanedUpCount: res.CleanedUpCount,
		Error:          res.Error,
	})
}

// Stats GET /api/admin/backup/stats
func (h *ScheduleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetBackupStats(r.Context())
	if err != nil {
		respondError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, backupStatsResponse{
		Count:                 st.Count,
		TotalSizeBytes:        st.TotalSizeBytes,
		LastSuccessAt:         st.LastSuccessAt,
		LastSuccessAgeSeconds: st.LastSuccessAgeSeconds,
		NewestBackupAt:        st.NewestBackupAt,
		OldestBackupAt:        st.OldestBackupAt,
		State:                 st.State,
		Enabled:               st.Enabled,
		NextRunAt:             st.NextRunAt,
	})
}
