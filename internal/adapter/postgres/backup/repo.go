// Package backup implements snapshot metadata persistence using PostgreSQL.
// Snapshot payloads live in the blob store; this table indexes them.
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const entity = "backup"

const columns = `id, label, description, kind, collections, total_items, size_bytes, checksum, blob_key, created_by, created_at`

// Repo provides backup metadata persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new backup metadata repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a metadata row.
func (r *Repo) Create(ctx context.Context, b domain.BackupInfo) error {
	collections := make([]string, len(b.Collections))
	for i, c := range b.Collections {
		collections[i] = string(c)
	}

	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`INSERT INTO backups (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID, b.Label, b.Description, string(b.Kind), collections, b.TotalItems,
		b.SizeBytes, b.Checksum, b.BlobKey, b.CreatedBy, b.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, entity, b.ID)
	}
	return nil
}

// GetByID returns the metadata row or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BackupInfo, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, `SELECT `+columns+` FROM backups WHERE id = $1`, id)
	b, err := scanBackup(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &b, nil
}

// List returns every backup, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.BackupInfo, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx,
		`SELECT `+columns+` FROM backups ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, postgres.MapError(err, entity, "list")
	}
	defer rows.Close()

	out := []domain.BackupInfo{}
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, entity, "list")
	}
	return out, nil
}

// Delete removes a metadata row. Returns domain.ErrNotFound if absent.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM backups WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// Totals aggregates count, size and age range of all backups.
func (r *Repo) Totals(ctx context.Context) (domain.BackupTotals, error) {
	var (
		t              domain.BackupTotals
		newest, oldest *time.Time
	)
	err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*), COALESCE(sum(size_bytes), 0)::bigint, max(created_at), min(created_at) FROM backups`,
	).Scan(&t.Count, &t.TotalSizeBytes, &newest, &oldest)
	if err != nil {
		return domain.BackupTotals{}, postgres.MapError(err, entity, "totals")
	}
	t.NewestAt = newest
	t.OldestAt = oldest
	return t, nil
}

func scanBackup(row pgx.Row) (domain.BackupInfo, error) {
	var (
		b           domain.BackupInfo
		kind        string
		collections []string
	)
	err := row.Scan(&b.ID, &b.Label, &b.Description, &kind, &collections, &b.TotalItems,
		&b.SizeBytes, &b.Checksum, &b.BlobKey, &b.CreatedBy, &b.CreatedAt)
	if err != nil {
		return domain.BackupInfo{}, err
	}
	b.Kind = domain.SnapshotKind(kind)
	b.Collections = make([]domain.Collection, len(collections))
	for i, c := range collections {
		b.Collections[i] = domain.Collection(c)
	}
	return b, nil
}
