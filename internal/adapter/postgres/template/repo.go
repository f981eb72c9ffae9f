// Package template implements the prompt template repository using PostgreSQL.
package template

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const entity = "template"

const columns = `id, name, description, subject, grade_levels, output_type, content, variables, tags,
	difficulty, recommended_tool_ids, usage_count, created_at, updated_at`

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Repo provides template persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new template repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a template by id or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tpl, err := scanTemplate(q.QueryRow(ctx, `SELECT `+columns+` FROM templates WHERE id = $1`, id))
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &tpl, nil
}

// Exists reports whether a template with the id is stored.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM templates WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, postgres.MapError(err, entity, id)
	}
	return exists, nil
}

// List returns one page of templates matching the filter and the total number of matches.
func (r *Repo) List(ctx context.Context, f domain.TemplateFilter) ([]domain.Template, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	where := applyFilter(f)

	countSQL, countArgs, err := postgres.Builder.Select("count(*)").From("templates").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count templates: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}

	listSQL, args, err := postgres.Builder.Select(columns).From("templates").Where(where).
		OrderBy("lower(name) ASC", "id ASC").
		Limit(uint64(limit)).Offset(uint64(max(f.Offset, 0))).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list templates: %w", err)
	}

	tpls, err := r.query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	return tpls, total, nil
}

// ListAll returns every template matching the filter, ignoring pagination.
func (r *Repo) ListAll(ctx context.Context, f domain.TemplateFilter) ([]domain.Template, error) {
	listSQL, args, err := postgres.Builder.Select(columns).From("templates").Where(applyFilter(f)).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list all templates: %w", err)
	}
	return r.query(ctx, listSQL, args...)
}

// CountByOutputType returns template counts per output type.
func (r *Repo) CountByOutputType(ctx context.Context) (map[domain.OutputType]int, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx,
		`SELECT output_type, count(*) FROM templates GROUP BY output_type`)
	if err != nil {
		return nil, postgres.MapError(err, entity, "count_by_output_type")
	}
	defer rows.Close()

	out := make(map[domain.OutputType]int)
	for rows.Next() {
		var (
			ot string
			n  int
		)
		if err := rows.Scan(&ot, &n); err != nil {
			return nil, fmt.Errorf("scan output type count: %w", err)
		}
		out[domain.OutputType(ot)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, entity, "count_by_output_type")
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a template. Timestamps are stored as given.
func (r *Repo) Create(ctx context.Context, t domain.Template) (*domain.Template, error) {
	args, err := insertArgs(t)
	if err != nil {
		return nil, err
	}

	created, err := scanTemplate(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, insertSQL+` RETURNING `+columns, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, t.ID)
	}
	return &created, nil
}

// Update replaces every mutable column of the template identified by t.ID.
func (r *Repo) Update(ctx context.Context, t domain.Template) (*domain.Template, error) {
	args, err := insertArgs(t)
	if err != nil {
		return nil, err
	}

	updated, err := scanTemplate(postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, updateSQL+` RETURNING `+columns, args...))
	if err != nil {
		return nil, postgres.MapError(err, entity, t.ID)
	}
	return &updated, nil
}

// BulkUpsert writes templates with pgx.Batch. When overwrite is false existing
// ids are left untouched. Returns the number of rows written.
func (r *Repo) BulkUpsert(ctx context.Context, tpls []domain.Template, overwrite bool) (int, error) {
	if len(tpls) == 0 {
		return 0, nil
	}

	conflict := ` ON CONFLICT (id) DO NOTHING`
	if overwrite {
		conflict = ` ON CONFLICT (id) DO UPDATE SET ` + upsertSet
	}

	batch := &pgx.Batch{}
	for _, t := range tpls {
		args, err := insertArgs(t)
		if err != nil {
			return 0, err
		}
		batch.Queue(insertSQL+conflict, args...)
	}

	br := postgres.QuerierFromCtx(ctx, r.pool).SendBatch(ctx, batch)
	defer br.Close()

	written := 0
	for i := range tpls {
		tag, err := br.Exec()
		if err != nil {
			return written, postgres.MapError(err, entity, tpls[i].ID)
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

// IncrementUsage bumps the usage counter of a template.
func (r *Repo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`UPDATE templates SET usage_count = usage_count + 1 WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a template. Returns domain.ErrNotFound if the row is absent.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// DeleteByIDs removes the listed templates and returns how many existed.
func (r *Repo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM templates WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, postgres.MapError(err, entity, "bulk_delete")
	}
	return int(tag.RowsAffected()), nil
}

// DeleteAll removes every template. Used by restore with wipe.
func (r *Repo) DeleteAll(ctx context.Context) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM templates`)
	if err != nil {
		return 0, postgres.MapError(err, entity, "all")
	}
	return int(tag.RowsAffected()), nil
}

// Count returns the number of stored templates.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM templates`).Scan(&n); err != nil {
		return 0, postgres.MapError(err, entity, "count")
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const insertSQL = `INSERT INTO templates (` + columns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

const updateSQL = `UPDATE templates SET
	name = $2, description = $3, subject = $4, grade_levels = $5, output_type = $6, content = $7,
	variables = $8, tags = $9, difficulty = $10, recommended_tool_ids = $11, usage_count = $12,
	created_at = $13, updated_at = $14
	WHERE id = $1`

const upsertSet = `name = EXCLUDED.name, description = EXCLUDED.description, subject = EXCLUDED.subject,
	grade_levels = EXCLUDED.grade_levels, output_type = EXCLUDED.output_type, content = EXCLUDED.content,
	variables = EXCLUDED.variables, tags = EXCLUDED.tags, difficulty = EXCLUDED.difficulty,
	recommended_tool_ids = EXCLUDED.recommended_tool_ids, usage_count = EXCLUDED.usage_count,
	updated_at = EXCLUDED.updated_at`

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func applyFilter(f domain.TemplateFilter) sq.And {
	where := sq.And{}
	if len(f.IDs) > 0 {
		where = append(where, sq.Expr("id = ANY(?)", f.IDs))
	}
	if f.Search != nil && *f.Search != "" {
		where = append(where, postgres.ILike(*f.Search, "name", "description"))
	}
	if len(f.Subjects) > 0 {
		where = append(where, sq.Expr("lower(btrim(subject)) = ANY(?)", postgres.FoldAll(f.Subjects)))
	}
	if len(f.GradeLevels) > 0 {
		where = append(where, postgres.ArrayOverlapFold("grade_levels", f.GradeLevels))
	}
	if len(f.OutputTypes) > 0 {
		types := make([]string, len(f.OutputTypes))
		for i, o := range f.OutputTypes {
			types[i] = string(o)
		}
		where = append(where, sq.Eq{"output_type": types})
	}
	if f.Difficulty != nil {
		where = append(where, sq.Eq{"difficulty": string(*f.Difficulty)})
	}
	if len(f.Tags) > 0 {
		where = append(where, postgres.ArrayOverlapFold("tags", f.Tags))
	}
	return where
}

func (r *Repo) query(ctx context.Context, sqlStr string, args ...any) ([]domain.Template, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, entity, "query")
	}
	defer rows.Close()

	tpls := []domain.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		tpls = append(tpls, t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, entity, "query")
	}
	return tpls, nil
}

func insertArgs(t domain.Template) ([]any, error) {
	vars := t.Variables
	if vars == nil {
		vars = []domain.TemplateVariable{}
	}
	variables, err := json.Marshal(vars)
	if err != nil {
		return nil, fmt.Errorf("%s marshal variables: %w", entity, err)
	}
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	toolIDs := t.RecommendedToolIDs
	if toolIDs == nil {
		toolIDs = []uuid.UUID{}
	}
	return []any{
		t.ID, t.Name, t.Description, t.Subject, t.GradeLevels, string(t.OutputType), t.Content,
		variables, tags, string(t.Difficulty), toolIDs, t.UsageCount, t.CreatedAt, t.UpdatedAt,
	}, nil
}

func scanTemplate(row pgx.Row) (domain.Template, error) {
	var (
		t          domain.Template
		outputType string
		difficulty string
		variables  []byte
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Subject, &t.GradeLevels, &outputType, &t.Content,
		&variables, &t.Tags, &difficulty, &t.RecommendedToolIDs, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Template{}, err
	}

	t.OutputType = domain.OutputType(outputType)
	t.Difficulty = domain.Difficulty(difficulty)
	if err := json.Unmarshal(variables, &t.Variables); err != nil {
		return domain.Template{}, fmt.Errorf("unmarshal variables: %w", err)
	}
	return t, nil
}
