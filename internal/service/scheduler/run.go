package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
	"github.com/heartmarshall/eduprompt-backend/internal/service/backup"
	"github.com/heartmarshall/eduprompt-backend/pkg/ctxutil"
)

// RunBackupNow creates a backup regardless of the due state, then applies
// retention. The outcome is stored in the schedule's last-run fields. A
// failed run is not retried within the call; it returns a result describing
// the failure together with an error wrapping domain.ErrBackupFailed.
// A second concurrent call returns domain.ErrConflict.
func (s *Service) RunBackupNow(ctx context.Context) (*domain.RunResult, error) {
	if !s.tryStart() {
		return nil, fmt.Errorf("backup run already in progress: %w", domain.ErrConflict)
	}
	defer s.finish()

	cfg, err := s.schedules.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return s.run(ctx, cfg)
}

// Tick runs a backup only when one is due. ran reports whether a run happened.
func (s *Service) Tick(ctx context.Context) (result *domain.RunResult, ran bool, err error) {
	cfg, err := s.schedules.Get(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get schedule: %w", err)
	}
	now := s.clock()
	if !cfg.IsDue(now) {
		s.log.DebugContext(ctx, "backup not due", slog.Time("next_run", cfg.NextRun(now)))
		return nil, false, nil
	}

	if !s.tryStart() {
		return nil, false, fmt.Errorf("backup run already in progress: %w", domain.ErrConflict)
	}
	defer s.finish()

	result, err = s.run(ctx, cfg)
	return result, true, err
}

func (s *Service) run(ctx context.Context, cfg domain.ScheduleConfig) (*domain.RunResult, error) {
	startedAt := s.clock()

	kind := domain.SnapshotKindScheduled
	if _, ok := ctxutil.UserIDFromCtx(ctx); ok {
		kind = domain.SnapshotKindManual
	}

	snap, err := s.backups.CreateBackup(ctx, backup.CreateBackupInput{
		Kind:             kind,
		IncludeAITools:   cfg.IncludeAITools,
		IncludeTemplates: cfg.IncludeTemplates,
	})
	if err != nil {
		msg := err.Error()
		s.record(ctx, startedAt, domain.RunStatusFailed, &msg)
		s.log.ErrorContext(ctx, "backup run failed", slog.String("kind", string(kind)), slog.String("error", msg))
		return &domain.RunResult{Success: false, Error: msg}, fmt.Errorf("%w: %v", domain.ErrBackupFailed, err)
	}

	result := &domain.RunResult{Success: true, BackupID: &snap.ID}

	cleaned, err := s.applyRetention(ctx, cfg)
	result.CleanedUpCount = cleaned
	if err != nil {
		// The backup itself succeeded; retention is retried on the next run.
		result.Error = fmt.Sprintf("retention: %v", err)
		s.log.WarnContext(ctx, "retention failed", slog.String("error", err.Error()))
	}

	s.record(ctx, startedAt, domain.RunStatusSuccess, nil)
	s.log.InfoContext(ctx, "backup run finished",
		slog.String("backup_id", snap.ID.String()),
		slog.String("kind", string(kind)),
		slog.Int("cleaned_up", cleaned),
	)
	return result, nil
}

func (s *Service) record(ctx context.Context, at time.Time, status domain.RunStatus, msg *string) {
	if err := s.schedules.RecordRun(ctx, at.UTC(), status, msg); err != nil {
		s.log.ErrorContext(ctx, "record backup run", slog.String("error", err.Error()))
	}
}

// applyRetention deletes backups beyond MaxBackups and those older than
// RetentionDays, whichever set is larger.
func (s *Service) applyRetention(ctx context.Context, cfg domain.ScheduleConfig) (int, error) {
	list, err := s.backups.ListBackups(ctx)
	if err != nil {
		return 0, fmt.Errorf("list backups: %w", err)
	}
	ids := ExpiredBackups(list, cfg, s.clock())
	if len(ids) == 0 {
		return 0, nil
	}
	return s.backups.DeleteExpired(ctx, ids)
}

// ExpiredBackups returns the ids retention should remove from list, which must
// be ordered newest first. Both the count rule and the age rule select a
// suffix of list, so the larger selection contains the smaller.
func ExpiredBackups(list []domain.BackupInfo, cfg domain.ScheduleConfig, now time.Time) []uuid.UUID {
	byCount := 0
	if cfg.MaxBackups > 0 && len(list) > cfg.MaxBackups {
		byCount = len(list) - cfg.MaxBackups
	}

	byAge := 0
	if cfg.RetentionDays > 0 {
		cutoff := cfg.RetentionCutoff(now)
		for i := len(list) - 1; i >= 0 && list[i].CreatedAt.Before(cutoff); i-- {
			byAge++
		}
	}

	n := max(byCount, byAge)
	ids := make([]uuid.UUID, 0, n)
	for _, b := range list[len(list)-n:] {
		ids = append(ids, b.ID)
	}
	return ids
}
