// Package scheduler decides when a scheduled backup is due, runs it and
// applies retention. It is driven by Tick, called from an external cron
// (catalogctl backup tick) or the optional in-process Runner.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/backup"
	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

type scheduleRepo interface {
	Get(ctx context.Context) (domain.ScheduleConfig, error)
	SavePolicy(ctx context.Context, c domain.ScheduleConfig) (domain.ScheduleConfig, error)
	RecordRun(ctx context.Context, at time.Time, status domain.RunStatus, runErr *string) error
}

type backupService interface {
	CreateBackup(ctx context.Context, input backup.CreateBackupInput) (*domain.Snapshot, error)
	ListBackups(ctx context.Context) ([]domain.BackupInfo, error)
	DeleteExpired(ctx context.Context, ids []uuid.UUID) (int, error)
}

type backupTotals interface {
	Totals(ctx context.Context) (domain.BackupTotals, error)
}

type auditLogger interface {
	Log(ctx context.Context, e domain.AuditLogEntry) error
}

// Service runs scheduled backups. Only one run may be in flight per process.
type Service struct {
	schedules scheduleRepo
	backups   backupService
	totals    backupTotals
	audit     auditLogger
	loc       *time.Location
	log       *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	running bool
}

// NewService creates a scheduler. Time-of-day slots are interpreted in loc.
func NewService(
	log *slog.Logger,
	schedules scheduleRepo,
	backups backupService,
	totals backupTotals,
	audit auditLogger,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		schedules: schedules,
		backups:   backups,
		totals:    totals,
		audit:     audit,
		loc:       loc,
		log:       log.With("service", "scheduler"),
		now:       time.Now,
	}
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// IsDue reports whether cfg is enabled and its next slot has passed at now.
func IsDue(cfg domain.ScheduleConfig, now time.Time) bool {
	return cfg.IsDue(now)
}

// NextRun returns the next slot of cfg relative to now.
func NextRun(cfg domain.ScheduleConfig, now time.Time) time.Time {
	return cfg.NextRun(now)
}

// State reports the scheduler state at the current time.
func (s *Service) State(ctx context.Context) (domain.SchedulerState, error) {
	if s.isRunning() {
		return domain.SchedulerStateRunning, nil
	}
	cfg, err := s.schedules.Get(ctx)
	if err != nil {
		return "", err
	}
	return s.stateOf(cfg, s.clock()), nil
}

func (s *Service) stateOf(cfg domain.ScheduleConfig, now time.Time) domain.SchedulerState {
	switch {
	case s.isRunning():
		return domain.SchedulerStateRunning
	case cfg.IsDue(now):
		return domain.SchedulerStateDue
	case cfg.LastStatus != nil && *cfg.LastStatus == domain.RunStatusFailed:
		return domain.SchedulerStateFailed
	default:
		return domain.SchedulerStateIdle
	}
}

func (s *Service) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// tryStart marks a run in flight. Returns false if one already is.
func (s *Service) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *Service) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Service) writeAudit(ctx context.Context, details map[string]any) {
	e := domain.AuditLogEntry{
		ID:        uuid.New(),
		Action:    domain.AuditActionScheduleUpdate,
		Resource:  domain.AuditResourceSchedule,
		Details:   details,
		CreatedAt: s.now().UTC(),
	}
	if actor, ok := ctxutil.UserIDFromCtx(ctx); ok {
		e.ActorID = &actor
	}
	if ip := ctxutil.ClientIPFromCtx(ctx); ip != "" {
		e.IPAddress = &ip
	}
	if err := s.audit.Log(ctx, e); err != nil {
		s.log.WarnContext(ctx, "audit log failed", slog.String("error", err.Error()))
	}
}
