package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultScheduleConfig_IsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultScheduleConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Enabled {
		t.Error("defaults should be disabled")
	}
	if cfg.RetentionDays != 30 || cfg.MaxBackups != 10 {
		t.Errorf("unexpected retention defaults: %d days, %d backups", cfg.RetentionDays, cfg.MaxBackups)
	}
}

func TestScheduleConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ScheduleConfig)
	}{
		{"zero retention", func(c *ScheduleConfig) { c.RetentionDays = 0 }},
		{"negative max backups", func(c *ScheduleConfig) { c.MaxBackups = -1 }},
		{"bad frequency", func(c *ScheduleConfig) { c.Frequency = "hourly" }},
		{"bad time", func(c *ScheduleConfig) { c.TimeOfDay = "25:00" }},
		{"short time", func(c *ScheduleConfig) { c.TimeOfDay = "2:00" }},
		{"nothing included", func(c *ScheduleConfig) { c.IncludeAITools, c.IncludeTemplates = false, false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultScheduleConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestScheduleConfig_NextRun(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(y int, m time.Month, d, h, min int) *time.Time {
		v := time.Date(y, m, d, h, min, 0, 0, time.UTC)
		return &v
	}

	tests := []struct {
		name      string
		frequency ScheduleFrequency
		last      *time.Time
		want      time.Time
	}{
		{"never ran", FrequencyDaily, nil, time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)},
		{"daily", FrequencyDaily, at(2025, 3, 9, 2, 5), time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)},
		{"daily late manual run", FrequencyDaily, at(2025, 3, 10, 9, 0), time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)},
		{"weekly", FrequencyWeekly, at(2025, 3, 5, 2, 0), time.Date(2025, 3, 12, 2, 0, 0, 0, time.UTC)},
		{"monthly", FrequencyMonthly, at(2025, 2, 10, 2, 0), time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)},
		{"monthly from Jan 31 lands in February", FrequencyMonthly, at(2025, 1, 31, 2, 0), time.Date(2025, 2, 28, 2, 0, 0, 0, time.UTC)},
		{"monthly from Jan 31 in a leap year", FrequencyMonthly, at(2024, 1, 31, 2, 0), time.Date(2024, 2, 29, 2, 0, 0, 0, time.UTC)},
		{"monthly from Feb 29", FrequencyMonthly, at(2024, 2, 29, 2, 0), time.Date(2024, 3, 29, 2, 0, 0, 0, time.UTC)},
		{"monthly from Mar 31", FrequencyMonthly, at(2025, 3, 31, 2, 0), time.Date(2025, 4, 30, 2, 0, 0, 0, time.UTC)},
		{"monthly from Dec 31 crosses the year", FrequencyMonthly, at(2024, 12, 31, 2, 0), time.Date(2025, 1, 31, 2, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultScheduleConfig()
			cfg.Frequency = tt.frequency
			cfg.LastSuccessAt = tt.last
			if got := cfg.NextRun(now); !got.Equal(tt.want) {
				t.Errorf("NextRun() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScheduleConfig_IsDue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	cfg := DefaultScheduleConfig()
	cfg.LastSuccessAt = &yesterday
	if cfg.IsDue(now) {
		t.Fatal("disabled schedule must never be due")
	}

	cfg.Enabled = true
	if !cfg.IsDue(now) {
		t.Fatal("daily schedule that last ran yesterday should be due after today's slot")
	}

	cfg.LastSuccessAt = &now
	if cfg.IsDue(now) {
		t.Fatal("schedule that just succeeded should not be due")
	}
}

func TestScheduleConfig_Collections(t *testing.T) {
	t.Parallel()

	cfg := DefaultScheduleConfig()
	cfg.IncludeAITools = false
	got := cfg.Collections()
	if len(got) != 1 || got[0] != CollectionTemplates {
		t.Fatalf("Collections() = %v", got)
	}
}
