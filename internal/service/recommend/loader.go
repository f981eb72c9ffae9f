package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

const (
	maxBatch = 100
	wait     = 2 * time.Millisecond
)

// newEngagementLoader creates a loader for one lookup. Results are cached
// for the loader's lifetime only.
func newEngagementLoader(repo engagementRepo, itemType domain.ItemType) *dataloader.Loader[uuid.UUID, domain.Engagement] {
	batchFn := func(ctx context.Context, keys []uuid.UUID) []*dataloader.Result[domain.Engagement] {
		stats, err := repo.EngagementByIDs(ctx, itemType, keys)
		if err != nil {
			return errorResults[domain.Engagement](len(keys), err)
		}
		return mapResults(keys, stats)
	}
	return dataloader.NewBatchedLoader(
		batchFn,
		dataloader.WithWait[uuid.UUID, domain.Engagement](wait),
		dataloader.WithBatchCapacity[uuid.UUID, domain.Engagement](maxBatch),
	)
}

// loadEngagement queues every id before resolving any thunk so the loader
// can batch them.
func loadEngagement(ctx context.Context, l *dataloader.Loader[uuid.UUID, domain.Engagement], ids []uuid.UUID) (map[uuid.UUID]domain.Engagement, error) {
	thunks := make([]dataloader.Thunk[domain.Engagement], len(ids))
	for i, id := range ids {
		thunks[i] = l.Load(ctx, id)
	}

	out := make(map[uuid.UUID]domain.Engagement, len(ids))
	for i, thunk := range thunks {
		e, err := thunk()
		if err != nil {
			return nil, fmt.Errorf("load engagement: %w", err)
		}
		out[ids[i]] = e
	}
	return out, nil
}

func errorResults[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

// mapResults maps results back to key order. Missing keys get the zero value.
func mapResults[V any](keys []uuid.UUID, found map[uuid.UUID]V) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], len(keys))
	for i, key := range keys {
		results[i] = &dataloader.Result[V]{Data: found[key]}
	}
	return results
}
