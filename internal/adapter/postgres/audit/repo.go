// Package audit implements the Audit repository using PostgreSQL.
// It provides append-only operations for audit log entries.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const entity = "audit_log"

const columns = `id, actor_id, action, resource, target_id, details, ip_address, created_at`

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new audit entry and returns the persisted domain.AuditLogEntry.
func (r *Repo) Create(ctx context.Context, e domain.AuditLogEntry) (domain.AuditLogEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	details := e.Details
	if details == nil {
		details = map[string]any{}
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return domain.AuditLogEntry{}, fmt.Errorf("%s marshal details: %w", entity, err)
	}

	row := q.QueryRow(ctx,
		`INSERT INTO audit_logs (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+columns,
		e.ID, e.ActorID, string(e.Action), string(e.Resource), e.TargetID, detailsJSON, e.IPAddress, e.CreatedAt,
	)
	created, err := scanEntry(row)
	if err != nil {
		return domain.AuditLogEntry{}, postgres.MapError(err, entity, e.ID)
	}
	return created, nil
}

// Log creates an audit entry without returning it (fire-and-forget).
// Satisfies the auditLogger interfaces of the catalog, backup and scheduler services.
func (r *Repo) Log(ctx context.Context, e domain.AuditLogEntry) error {
	_, err := r.Create(ctx, e)
	return err
}

// DeleteOlderThan removes entries created before cutoff and returns how many were removed.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, postgres.MapError(err, entity, "cleanup")
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// List returns entries matching the filter, newest first, and the total number of matches.
func (r *Repo) List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	where := sq.And{}
	if f.ActorID != nil {
		where = append(where, sq.Eq{"actor_id": *f.ActorID})
	}
	if f.Action != nil {
		where = append(where, sq.Eq{"action": string(*f.Action)})
	}
	if f.Resource != nil {
		where = append(where, sq.Eq{"resource": string(*f.Resource)})
	}
	if f.From != nil {
		where = append(where, sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, sq.Lt{"created_at": *f.To})
	}

	countSQL, countArgs, err := postgres.Builder.Select("count(*)").From("audit_logs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count audit_logs: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}

	listSQL, args, err := postgres.Builder.Select(columns).From("audit_logs").Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).Offset(uint64(max(f.Offset, 0))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list audit_logs: %w", err)
	}

	rows, err := q.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}
	defer rows.Close()

	entries := []domain.AuditLogEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", entity, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}
	return entries, total, nil
}

// GetByActor returns entries written by an actor, newest first, with pagination.
func (r *Repo) GetByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]domain.AuditLogEntry, int, error) {
	return r.List(ctx, domain.AuditFilter{ActorID: &actorID, Limit: limit, Offset: offset})
}

// Stats aggregates the audit log relative to now.
func (r *Repo) Stats(ctx context.Context, now time.Time) (domain.AuditStats, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stats := domain.AuditStats{
		ByAction:   make(map[domain.AuditAction]int),
		ByResource: make(map[domain.AuditResource]int),
	}

	err := q.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE created_at >= $1),
		        count(*) FILTER (WHERE created_at >= $2)
		   FROM audit_logs`,
		now.Add(-24*time.Hour), now.AddDate(0, 0, -7),
	).Scan(&stats.Total, &stats.Last24h, &stats.Last7d)
	if err != nil {
		return domain.AuditStats{}, postgres.MapError(err, entity, "stats")
	}

	rows, err := q.Query(ctx, `SELECT action, resource, count(*) FROM audit_logs GROUP BY action, resource`)
	if err != nil {
		return domain.AuditStats{}, postgres.MapError(err, entity, "stats")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			action, resource string
			n                int
		)
		if err := rows.Scan(&action, &resource, &n); err != nil {
			return domain.AuditStats{}, fmt.Errorf("scan audit stats: %w", err)
		}
		stats.ByAction[domain.AuditAction(action)] += n
		stats.ByResource[domain.AuditResource(resource)] += n
	}
	if err := rows.Err(); err != nil {
		return domain.AuditStats{}, postgres.MapError(err, entity, "stats")
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func scanEntry(row pgx.Row) (domain.AuditLogEntry, error) {
	var (
		e                domain.AuditLogEntry
		action, resource string
		details          []byte
	)
	if err := row.Scan(&e.ID, &e.ActorID, &action, &resource, &e.TargetID, &details, &e.IPAddress, &e.CreatedAt); err != nil {
		return domain.AuditLogEntry{}, err
	}
	e.Action = domain.AuditAction(action)
	e.Resource = domain.AuditResource(resource)

	if len(details) > 0 {
		m := make(map[string]any)
		if err := json.Unmarshal(details, &m); err != nil {
			return domain.AuditLogEntry{}, fmt.Errorf("%s %s unmarshal details: %w", entity, e.ID, err)
		}
		e.Details = m
	}
	return e, nil
}
