// Package aitool implements the AI tool catalog repository using PostgreSQL.
package aitool

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

const entity = "ai_tool"

const columns = `id, name, description, url, category, subjects, grade_levels, features, use_cases,
	pricing_model, difficulty, vietnamese_support, popularity, trending, created_at, updated_at`

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Repo provides AI tool persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new AI tool repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a tool by id or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AITool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+columns+` FROM ai_tools WHERE id = $1`, id)
	tool, err := scanTool(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, id)
	}
	return &tool, nil
}

// Exists reports whether a tool with the id is stored.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ai_tools WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, postgres.MapError(err, entity, id)
	}
	return exists, nil
}

// List returns one page of tools matching the filter, ordered by name, and
// the total number of matches.
func (r *Repo) List(ctx context.Context, f domain.ToolFilter) ([]domain.AITool, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := max(f.Offset, 0)

	where := applyFilter(f)

	countSQL, countArgs, err := postgres.Builder.Select("count(*)").From("ai_tools").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count ai_tools: %w", err)
	}
	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, entity, "list")
	}

	listSQL, args, err := postgres.Builder.Select(columns).From("ai_tools").Where(where).
		OrderBy("lower(name) ASC", "id ASC").
		Limit(uint64(limit)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list ai_tools: %w", err)
	}

	tools, err := r.query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	return tools, total, nil
}

// ListAll returns every tool matching the filter, ignoring pagination.
func (r *Repo) ListAll(ctx context.Context, f domain.ToolFilter) ([]domain.AITool, error) {
	listSQL, args, err := postgres.Builder.Select(columns).From("ai_tools").Where(applyFilter(f)).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list all ai_tools: %w", err)
	}
	return r.query(ctx, listSQL, args...)
}

// Count returns the number of stored tools.
func (r *Repo) Count(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var n int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM ai_tools`).Scan(&n); err != nil {
		return 0, postgres.MapError(err, entity, "count")
	}
	return n, nil
}

// CountByCategory returns tool counts per category and the trending count.
func (r *Repo) CountByCategory(ctx context.Context) (map[domain.ToolCategory]int, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx,
		`SELECT category, count(*), count(*) FILTER (WHERE trending) FROM ai_tools GROUP BY category`)
	if err != nil {
		return nil, 0, postgres.MapError(err, entity, "count_by_category")
	}
	defer rows.Close()

	out := make(map[domain.ToolCategory]int)
	trending := 0
	for rows.Next() {
		var (
			category string
			n, t     int
		)
		if err := rows.Scan(&category, &n, &t); err != nil {
			return nil, 0, fmt.Errorf("scan category count: %w", err)
		}
		out[domain.ToolCategory(category)] = n
		trending += t
	}
	if err := rows.Err(); err != nil {
		return nil, 0, postgres.MapError(err, entity, "count_by_category")
	}
	return out, trending, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a tool. Timestamps are stored as given.
func (r *Repo) Create(ctx context.Context, t domain.AITool) (*domain.AITool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	args, err := insertArgs(t)
	if err != nil {
		return nil, err
	}

	row := q.QueryRow(ctx, insertSQL+` RETURNING `+columns, args...)
	created, err := scanTool(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, t.ID)
	}
	return &created, nil
}

// Update replaces every mutable column of the tool identified by t.ID.
// Returns domain.ErrNotFound if the row is absent.
func (r *Repo) Update(ctx context.Context, t domain.AITool) (*domain.AITool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	args, err := insertArgs(t)
	if err != nil {
		return nil, err
	}

	row := q.QueryRow(ctx, updateSQL+` RETURNING `+columns, args...)
	updated, err := scanTool(row)
	if err != nil {
		return nil, postgres.MapError(err, entity, t.ID)
	}
	return &updated, nil
}

// BulkUpsert writes tools with pgx.Batch. When overwrite is false existing
// ids are left untouched. Returns the number of rows written.
func (r *Repo) BulkUpsert(ctx context.Context, tools []domain.AITool, overwrite bool) (int, error) {
	if len(tools) == 0 {
		return 0, nil
	}

	conflict := ` ON CONFLICT (id) DO NOTHING`
	if overwrite {
		conflict = ` ON CONFLICT (id) DO UPDATE SET ` + upsertSet
	}

	batch := &pgx.Batch{}
	for _, t := range tools {
		args, err := insertArgs(t)
		if err != nil {
			return 0, err
		}
		batch.Queue(insertSQL+conflict, args...)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	br := q.SendBatch(ctx, batch)
	defer br.Close()

	written := 0
	for i := range tools {
		tag, err := br.Exec()
		if err != nil {
			return written, postgres.MapError(err, entity, tools[i].ID)
		}
		written += int(tag.RowsAffected())
	}
	return written, nil
}

// BulkUpdate applies the patch to every listed tool. Returns the number of updated rows.
func (r *Repo) BulkUpdate(ctx context.Context, ids []uuid.UUID, patch domain.ToolPatch) (int, error) {
	if len(ids) == 0 || patch.IsEmpty() {
		return 0, nil
	}

	set := map[string]any{"updated_at": sq.Expr("now()")}
	if patch.Category != nil {
		set["category"] = string(*patch.Category)
	}
	if patch.Difficulty != nil {
		set["difficulty"] = string(*patch.Difficulty)
	}
	if patch.PricingModel != nil {
		set["pricing_model"] = string(*patch.PricingModel)
	}
	if patch.Trending != nil {
		set["trending"] = *patch.Trending
	}

	sqlStr, args, err := postgres.Builder.Update("ai_tools").SetMap(set).
		Where(sq.Expr("id = ANY(?)", ids)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build bulk update ai_tools: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sqlStr, args...)
	if err != nil {
		return 0, postgres.MapError(err, entity, "bulk_update")
	}
	return int(tag.RowsAffected()), nil
}

// Delete removes a tool. Returns domain.ErrNotFound if the row is absent.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM ai_tools WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// DeleteByIDs removes the listed tools and returns how many existed.
func (r *Repo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM ai_tools WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, postgres.MapError(err, entity, "bulk_delete")
	}
	return int(tag.RowsAffected()), nil
}

// DeleteAll removes every tool. Used by restore with wipe.
func (r *Repo) DeleteAll(ctx context.Context) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, `DELETE FROM ai_tools`)
	if err != nil {
		return 0, postgres.MapError(err, entity, "all")
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const insertSQL = `INSERT INTO ai_tools (` + columns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const updateSQL = `UPDATE ai_tools SET
	name = $2, description = $3, url = $4, category = $5, subjects = $6, grade_levels = $7,
	features = $8, use_cases = $9, pricing_model = $10, difficulty = $11, vietnamese_support = $12,
	popularity = $13, trending = $14, created_at = $15, updated_at = $16
	WHERE id = $1`

const upsertSet = `name = EXCLUDED.name, description = EXCLUDED.description, url = EXCLUDED.url,
	category = EXCLUDED.category, subjects = EXCLUDED.subjects, grade_levels = EXCLUDED.grade_levels,
	features = EXCLUDED.features, use_cases = EXCLUDED.use_cases, pricing_model = EXCLUDED.pricing_model,
	difficulty = EXCLUDED.difficulty, vietnamese_support = EXCLUDED.vietnamese_support,
	popularity = EXCLUDED.popularity, trending = EXCLUDED.trending, updated_at = EXCLUDED.updated_at`

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func applyFilter(f domain.ToolFilter) sq.And {
	where := sq.And{}
	if len(f.IDs) > 0 {
		where = append(where, sq.Expr("id = ANY(?)", f.IDs))
	}
	if f.Search != nil && *f.Search != "" {
		where = append(where, postgres.ILike(*f.Search, "name", "description"))
	}
	if len(f.Categories) > 0 {
		cats := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			cats[i] = string(c)
		}
		where = append(where, sq.Eq{"category": cats})
	}
	if len(f.Subjects) > 0 {
		where = append(where, postgres.ArrayOverlapFold("subjects", f.Subjects))
	}
	if len(f.GradeLevels) > 0 {
		where = append(where, postgres.ArrayOverlapFold("grade_levels", f.GradeLevels))
	}
	if f.Difficulty != nil {
		where = append(where, sq.Eq{"difficulty": string(*f.Difficulty)})
	}
	if f.PricingModel != nil {
		where = append(where, sq.Eq{"pricing_model": string(*f.PricingModel)})
	}
	if f.Trending != nil {
		where = append(where, sq.Eq{"trending": *f.Trending})
	}
	if f.VietnameseOnly {
		where = append(where, sq.Eq{"vietnamese_support": true})
	}
	return where
}

func (r *Repo) query(ctx context.Context, sqlStr string, args ...any) ([]domain.AITool, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, entity, "query")
	}
	defer rows.Close()

	tools := []domain.AITool{}
	for rows.Next() {
		t, err := scanTool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, entity, "query")
	}
	return tools, nil
}

func insertArgs(t domain.AITool) ([]any, error) {
	features, err := json.Marshal(nonNil(t.Features))
	if err != nil {
		return nil, fmt.Errorf("%s marshal features: %w", entity, err)
	}
	useCases, err := json.Marshal(nonNil(t.UseCases))
	if err != nil {
		return nil, fmt.Errorf("%s marshal use cases: %w", entity, err)
	}
	return []any{
		t.ID, t.Name, t.Description, t.URL, string(t.Category), t.Subjects, t.GradeLevels,
		features, useCases, string(t.PricingModel), string(t.Difficulty), t.VietnameseSupport,
		t.Popularity, t.Trending, t.CreatedAt, t.UpdatedAt,
	}, nil
}

func scanTool(row pgx.Row) (domain.AITool, error) {
	var (
		t                  domain.AITool
		category           string
		pricing            string
		difficulty         string
		features, useCases []byte
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.URL, &category, &t.Subjects, &t.GradeLevels,
		&features, &useCases, &pricing, &difficulty, &t.VietnameseSupport,
		&t.Popularity, &t.Trending, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.AITool{}, err
	}

	t.Category = domain.ToolCategory(category)
	t.PricingModel = domain.PricingModel(pricing)
	t.Difficulty = domain.Difficulty(difficulty)
	if err := json.Unmarshal(features, &t.Features); err != nil {
		return domain.AITool{}, fmt.Errorf("unmarshal features: %w", err)
	}
	if err := json.Unmarshal(useCases, &t.UseCases); err != nil {
		return domain.AITool{}, fmt.Errorf("unmarshal use cases: %w", err)
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
