// Package rating implements the catalog rating repository using PostgreSQL.
package rating

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// Repo provides rating persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new rating repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const upsertSQL = `INSERT INTO item_ratings (item_type, item_id, user_id, rating, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (item_type, item_id, user_id) DO UPDATE SET rating = EXCLUDED.rating, created_at = EXCLUDED.created_at`

const engagementSQL = `SELECT item_id,
	       avg(rating)::float8,
	       count(*),
	       count(*) FILTER (WHERE created_at >= now() - interval '30 days')
	  FROM item_ratings
	 WHERE item_type = $1 AND item_id = ANY($2)
	 GROUP BY item_id`

// Upsert stores the user's rating, replacing a previous one.
func (r *Repo) Upsert(ctx context.Context, rt domain.Rating) error {
	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, upsertSQL,
		string(rt.ItemType), rt.ItemID, rt.UserID, rt.Rating, rt.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "item_rating", rt.ItemID)
	}
	return nil
}

// EngagementByIDs aggregates ratings for the given items. Items without
// ratings are absent from the result.
func (r *Repo) EngagementByIDs(ctx context.Context, itemType domain.ItemType, ids []uuid.UUID) (map[uuid.UUID]domain.Engagement, error) {
	out := make(map[uuid.UUID]domain.Engagement, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, engagementSQL, string(itemType), ids)
	if err != nil {
		return nil, postgres.MapError(err, "item_rating", itemType)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id uuid.UUID
			e  domain.Engagement
		)
		if err := rows.Scan(&id, &e.RatingAvg, &e.RatingCount, &e.RecentCount); err != nil {
			return nil, fmt.Errorf("scan engagement: %w", err)
		}
		out[id] = e
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "item_rating", itemType)
	}
	return out, nil
}

// Count returns the number of stored ratings.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, `SELECT count(*) FROM item_ratings`).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "item_rating", "count")
	}
	return n, nil
}

// DeleteByItems removes ratings of deleted catalog items.
func (r *Repo) DeleteByItems(ctx context.Context, itemType domain.ItemType, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`DELETE FROM item_ratings WHERE item_type = $1 AND item_id = ANY($2)`, string(itemType), ids)
	if err != nil {
		return postgres.MapError(err, "item_rating", itemType)
	}
	return nil
}
