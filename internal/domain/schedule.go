package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduleConfig is the persisted policy of the backup scheduler.
type ScheduleConfig struct {
	Enabled          bool
	Frequency        ScheduleFrequency
	TimeOfDay        string // "HH:MM", 24h
	RetentionDays    int
	MaxBackups       int
	IncludeAITools   bool
	IncludeTemplates bool

	LastRunAt     *time.Time
	LastSuccessAt *time.Time
	LastStatus    *RunStatus
	LastError     *string
	UpdatedAt     time.Time
}

// DefaultScheduleConfig returns the policy used before an admin saves one.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Enabled:          false,
		Frequency:        FrequencyDaily,
		TimeOfDay:        "02:00",
		RetentionDays:    30,
		MaxBackups:       10,
		IncludeAITools:   true,
		IncludeTemplates: true,
	}
}

// Validate checks the schedule policy invariants.
func (c ScheduleConfig) Validate() error {
	var errs []FieldError

	if !c.Frequency.IsValid() {
		errs = append(errs, FieldError{Field: "frequency", Message: "must be one of daily, weekly, monthly"})
	}
	if _, _, err := ParseTimeOfDay(c.TimeOfDay); err != nil {
		errs = append(errs, FieldError{Field: "timeOfDay", Message: err.Error()})
	}
	if c.RetentionDays <= 0 {
		errs = append(errs, FieldError{Field: "retentionDays", Message: "must be positive"})
	}
	if c.MaxBackups <= 0 {
		errs = append(errs, FieldError{Field: "maxBackups", Message: "must be positive"})
	}
	if !c.IncludeAITools && !c.IncludeTemplates {
		errs = append(errs, FieldError{Field: "collections", Message: "at least one collection must be included"})
	}

	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Collections returns the collections the schedule includes.
func (c ScheduleConfig) Collections() []Collection {
	var out []Collection
	if c.IncludeAITools {
		out = append(out, CollectionAITools)
	}
	if c.IncludeTemplates {
		out = append(out, CollectionTemplates)
	}
	return out
}

// NextRun returns when the next scheduled backup becomes due.
// A schedule that never succeeded is due at today's slot. Otherwise the next
// slot falls on the day of the last success advanced by one period.
func (c ScheduleConfig) NextRun(now time.Time) time.Time {
	h, m, err := ParseTimeOfDay(c.TimeOfDay)
	if err != nil {
		h, m = 2, 0
	}
	if c.LastSuccessAt == nil {
		return slotOn(now, h, m)
	}

	base := c.LastSuccessAt.In(now.Location())
	switch c.Frequency {
	case FrequencyWeekly:
		base = base.AddDate(0, 0, 7)
	case FrequencyMonthly:
		base = addMonthClamped(base)
	default:
		base = base.AddDate(0, 0, 1)
	}
	return slotOn(base, h, m)
}

// IsDue reports whether a scheduled backup should run at now.
func (c ScheduleConfig) IsDue(now time.Time) bool {
	if !c.Enabled {
		return false
	}
	return !now.Before(c.NextRun(now))
}

// RetentionCutoff returns the instant before which backups are expired.
func (c ScheduleConfig) RetentionCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -c.RetentionDays)
}

// ParseTimeOfDay parses a "HH:MM" 24h clock value.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != 5 {
		return 0, 0, fmt.Errorf("must be HH:MM (24h)")
	}
	return t.Hour(), t.Minute(), nil
}

// addMonthClamped moves t one calendar month forward, landing on the last day
// of the target month when t's day does not exist there (Jan 31 -> Feb 28).
func addMonthClamped(t time.Time) time.Time {
	y, mo, d := t.Date()
	first := time.Date(y, mo+1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, last)-1)
}

func slotOn(day time.Time, hour, minute int) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, hour, minute, 0, 0, day.Location())
}

// RunResult reports the outcome of a backup run.
type RunResult struct {
	Success        bool
	BackupID       *uuid.UUID
	CleanedUpCount int
	Error          string
}
