// Package schedule persists the single-row backup schedule using PostgreSQL.
package schedule

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const entity = "backup_schedule"

// Repo provides schedule persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new schedule repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectSQL = `SELECT enabled, frequency, time_of_day, retention_days, max_backups, include_ai_tools,
	include_templates, last_run_at, last_success_at, last_status, last_error, updated_at
	FROM backup_schedule WHERE id = 1`

// Get returns the schedule, creating the default row on first read.
func (r *Repo) Get(ctx context.Context) (domain.ScheduleConfig, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, `INSERT INTO backup_schedule (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		return domain.ScheduleConfig{}, postgres.MapError(err, entity, 1)
	}

	var (
		c         domain.ScheduleConfig
		frequency string
		status    *string
	)
	err := q.QueryRow(ctx, selectSQL).Scan(
		&c.Enabled, &frequency, &c.TimeOfDay, &c.RetentionDays, &c.MaxBackups, &c.IncludeAITools,
		&c.IncludeTemplates, &c.LastRunAt, &c.LastSuccessAt, &status, &c.LastError, &c.UpdatedAt,
	)
	if err != nil {
		return domain.ScheduleConfig{}, postgres.MapError(err, entity, 1)
	}
	c.Frequency = domain.ScheduleFrequency(frequency)
	if status != nil {
		s := domain.RunStatus(*status)
		c.LastStatus = &s
	}
	return c, nil
}

// SavePolicy stores the admin-editable fields. Run bookkeeping is preserved.
func (r *Repo) SavePolicy(ctx context.Context, c domain.ScheduleConfig) (domain.ScheduleConfig, error) {
	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`INSERT INTO backup_schedule (id, enabled, frequency, time_of_day, retention_days, max_backups,
		                              include_ai_tools, include_templates, updated_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7, now())
		 ON CONFLICT (id) DO UPDATE SET
		   enabled = EXCLUDED.enabled, frequency = EXCLUDED.frequency, time_of_day = EXCLUDED.time_of_day,
		   retention_days = EXCLUDED.retention_days, max_backups = EXCLUDED.max_backups,
		   include_ai_tools = EXCLUDED.include_ai_tools, include_templates = EXCLUDED.include_templates,
		   updated_at = now()`,
		c.Enabled, string(c.Frequency), c.TimeOfDay, c.RetentionDays, c.MaxBackups, c.IncludeAITools, c.IncludeTemplates,
	)
	if err != nil {
		return domain.ScheduleConfig{}, postgres.MapError(err, entity, 1)
	}
	return r.Get(ctx)
}

// RecordRun stores the outcome of a scheduler run. On success last_success_at
// advances; on failure it is kept so the next tick retries.
func (r *Repo) RecordRun(ctx context.Context, at time.Time, status domain.RunStatus, runErr *string) error {
	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`UPDATE backup_schedule SET
		   last_run_at = $1,
		   last_status = $2,
		   last_error = $3,
		   last_success_at = CASE WHEN $2 = 'SUCCESS' THEN $1 ELSE last_success_at END
		 WHERE id = 1`,
		at, string(status), runErr,
	)
	if err != nil {
		return postgres.MapError(err, entity, 1)
	}
	return nil
}
