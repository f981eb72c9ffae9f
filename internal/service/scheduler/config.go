package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// UpdateConfigInput carries the editable policy fields. Nil fields keep their current value.
type UpdateConfigInput struct {
	Enabled          *bool
	Frequency        *domain.ScheduleFrequency
	TimeOfDay        *string
	RetentionDays    *int
	MaxBackups       *int
	IncludeAITools   *bool
	IncludeTemplates *bool
}

// GetConfig returns the current schedule, creating the default on first read.
func (s *Service) GetConfig(ctx context.Context) (domain.ScheduleConfig, error) {
	cfg, err := s.schedules.Get(ctx)
	if err != nil {
		return domain.ScheduleConfig{}, fmt.Errorf("get schedule: %w", err)
	}
	return cfg, nil
}

// UpdateConfig merges input into the stored policy, validates and saves it.
func (s *Service) UpdateConfig(ctx context.Context, input UpdateConfigInput) (domain.ScheduleConfig, error) {
	current, err := s.schedules.Get(ctx)
	if err != nil {
		return domain.ScheduleConfig{}, fmt.Errorf("get schedule: %w", err)
	}

	next := current
	changes := map[string]any{}
	if input.Enabled != nil && *input.Enabled != current.Enabled {
		next.Enabled = *input.Enabled
		changes["enabled"] = map[string]any{"old": current.Enabled, "new": next.Enabled}
	}
	if input.Frequency != nil && *input.Frequency != current.Frequency {
		next.Frequency = *input.Frequency
		changes["frequency"] = map[string]any{"old": current.Frequency, "new": next.Frequency}
	}
	if input.TimeOfDay != nil && *input.TimeOfDay != current.TimeOfDay {
		next.TimeOfDay = *input.TimeOfDay
		changes["timeOfDay"] = map[string]any{"old": current.TimeOfDay, "new": next.TimeOfDay}
	}
	if input.RetentionDays != nil && *input.RetentionDays != current.RetentionDays {
		next.RetentionDays = *input.RetentionDays
		changes["retentionDays"] = map[string]any{"old": current.RetentionDays, "new": next.RetentionDays}
	}
	if input.MaxBackups != nil && *input.MaxBackups != current.MaxBackups {
		next.MaxBackups = *input.MaxBackups
		changes["maxBackups"] = map[string]any{"old": current.MaxBackups, "new": next.MaxBackups}
	}
	if input.IncludeAITools != nil && *input.IncludeAITools != current.IncludeAITools {
		next.IncludeAITools = *input.IncludeAITools
		changes["includeAITools"] = map[string]any{"old": current.IncludeAITools, "new": next.IncludeAITools}
	}
	if input.IncludeTemplates != nil && *input.IncludeTemplates != current.IncludeTemplates {
		next.IncludeTemplates = *input.IncludeTemplates
		changes["includeTemplates"] = map[string]any{"old": current.IncludeTemplates, "new": next.IncludeTemplates}
	}

	if err := next.Validate(); err != nil {
		return domain.ScheduleConfig{}, err
	}
	if len(changes) == 0 {
		return current, nil
	}

	saved, err := s.schedules.SavePolicy(ctx, next)
	if err != nil {
		return domain.ScheduleConfig{}, fmt.Errorf("save schedule: %w", err)
	}

	s.writeAudit(ctx, changes)
	s.log.InfoContext(ctx, "schedule updated",
		slog.Bool("enabled", saved.Enabled),
		slog.String("frequency", string(saved.Frequency)),
		slog.String("time_of_day", saved.TimeOfDay),
	)
	return saved, nil
}

// Stats summarises stored backups and the schedule.
type Stats struct {
	Count                 int
	TotalSizeBytes        int64
	LastSuccessAt         *time.Time
	LastSuccessAgeSeconds *float64
	NewestBackupAt        *time.Time
	OldestBackupAt        *time.Time
	State                 domain.SchedulerState
	Enabled               bool
	NextRunAt             *time.Time // nil while disabled
}

// GetBackupStats reports backup totals together with the scheduler state.
func (s *Service) GetBackupStats(ctx context.Context) (Stats, error) {
	cfg, err := s.schedules.Get(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("get schedule: %w", err)
	}
	totals, err := s.totals.Totals(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("backup totals: %w", err)
	}

	now := s.clock()
	st := Stats{
		Count:          totals.Count,
		TotalSizeBytes: totals.TotalSizeBytes,
		LastSuccessAt:  cfg.LastSuccessAt,
		NewestBackupAt: totals.NewestAt,
		OldestBackupAt: totals.OldestAt,
		State:          s.stateOf(cfg, now),
		Enabled:        cfg.Enabled,
	}
	if cfg.LastSuccessAt != nil {
		age := now.Sub(*cfg.LastSuccessAt).Seconds()
		st.LastSuccessAgeSeconds = &age
	}
	if cfg.Enabled {
		next := cfg.NextRun(now)
		st.NextRunAt = &next
	}
	return st, nil
}
