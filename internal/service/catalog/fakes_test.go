package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

type fakeToolRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]domain.AITool
	listCalls int
	// afterList runs once the page is read, outside the lock.
	afterList func()
}

func newFakeToolRepo(tools ...domain.AITool) *fakeToolRepo {
	r := &fakeToolRepo{items: map[uuid.UUID]domain.AITool{}}
	for _, t := range tools {
		r.items[t.ID] = t
	}
	return r
}

func (r *fakeToolRepo) sorted(f domain.ToolFilter) []domain.AITool {
	var out []domain.AITool
	for _, t := range r.items {
		if t.Matches(f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *fakeToolRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.AITool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("ai_tool %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *fakeToolRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakeToolRepo) List(_ context.Context, f domain.ToolFilter) ([]domain.AITool, int, error) {
	r.mu.Lock()
	r.listCalls++
	all := r.sorted(f)
	hook := r.afterList
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	start := min(f.Offset, len(all))
	end := min(start+limit, len(all))
	return all[start:end], len(all), nil
}

func (r *fakeToolRepo) ListAll(_ context.Context, f domain.ToolFilter) ([]domain.AITool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(f), nil
}

func (r *fakeToolRepo) CountByCategory(context.Context) (map[domain.ToolCategory]int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.ToolCategory]int{}
	trending := 0
	for _, t := range r.items {
		out[t.Category]++
		if t.Trending {
			trending++
		}
	}
	return out, trending, nil
}

func (r *fakeToolRepo) Create(_ context.Context, t domain.AITool) (*domain.AITool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; ok {
		return nil, fmt.Errorf("ai_tool %s: %w", t.ID, domain.ErrAlreadyExists)
	}
	r.items[t.ID] = t
	return &t, nil
}

func (r *fakeToolRepo) Update(_ context.Context, t domain.AITool) (*domain.AITool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; !ok {
		return nil, fmt.Errorf("ai_tool %s: %w", t.ID, domain.ErrNotFound)
	}
	r.items[t.ID] = t
	return &t, nil
}

func (r *fakeToolRepo) BulkUpsert(_ context.Context, tools []domain.AITool, overwrite bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range tools {
		if _, ok := r.items[t.ID]; ok && !overwrite {
			continue
		}
		r.items[t.ID] = t
		n++
	}
	return n, nil
}

func (r *fakeToolRepo) BulkUpdate(_ context.Context, ids []uuid.UUID, p domain.ToolPatch) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		t, ok := r.items[id]
		if !ok {
			continue
		}
		if p.Category != nil {
			t.Category = *p.Category
		}
		if p.Difficulty != nil {
			t.Difficulty = *p.Difficulty
		}
		if p.PricingModel != nil {
			t.PricingModel = *p.PricingModel
		}
		if p.Trending != nil {
			t.Trending = *p.Trending
		}
		r.items[id] = t
		n++
	}
	return n, nil
}

func (r *fakeToolRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("ai_tool %s: %w", id, domain.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeToolRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type fakeTemplateRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]domain.Template
}

func newFakeTemplateRepo(tpls ...domain.Template) *fakeTemplateRepo {
	r := &fakeTemplateRepo{items: map[uuid.UUID]domain.Template{}}
	for _, t := range tpls {
		r.items[t.ID] = t
	}
	return r
}

func (r *fakeTemplateRepo) sorted(f domain.TemplateFilter) []domain.Template {
	var out []domain.Template
	for _, t := range r.items {
		if t.Matches(f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return &t, nil
}

func (r *fakeTemplateRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakeTemplateRepo) List(_ context.Context, f domain.TemplateFilter) ([]domain.Template, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(f)
	return all, len(all), nil
}

func (r *fakeTemplateRepo) ListAll(_ context.Context, f domain.TemplateFilter) ([]domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(f), nil
}

func (r *fakeTemplateRepo) CountByOutputType(context.Context) (map[domain.OutputType]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[domain.OutputType]int{}
	for _, t := range r.items {
		out[t.OutputType]++
	}
	return out, nil
}

func (r *fakeTemplateRepo) Create(_ context.Context, t domain.Template) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[t.ID] = t
	return &t, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t domain.Template) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; !ok {
		return nil, fmt.Errorf("template %s: %w", t.ID, domain.ErrNotFound)
	}
	r.items[t.ID] = t
	return &t, nil
}

func (r *fakeTemplateRepo) BulkUpsert(_ context.Context, tpls []domain.Template, overwrite bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range tpls {
		if _, ok := r.items[t.ID]; ok && !overwrite {
			continue
		}
		r.items[t.ID] = t
		n++
	}
	return n, nil
}

func (r *fakeTemplateRepo) IncrementUsage(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	t.UsageCount++
	r.items[id] = t
	return nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *fakeTemplateRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

type ratingKey struct {
	itemType domain.ItemType
	item     uuid.UUID
	user     uuid.UUID
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[ratingKey]int
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: map[ratingKey]int{}}
}

func (r *fakeRatingRepo) Upsert(_ context.Context, rt domain.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratings[ratingKey{rt.ItemType, rt.ItemID, rt.UserID}] = rt.Rating
	return nil
}

func (r *fakeRatingRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ratings), nil
}

func (r *fakeRatingRepo) DeleteByItems(_ context.Context, itemType domain.ItemType, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := map[uuid.UUID]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	for k := range r.ratings {
		if k.itemType == itemType && drop[k.item] {
			delete(r.ratings, k)
		}
	}
	return nil
}

type fakeBackupTotals struct {
	totals domain.BackupTotals
}

func (f *fakeBackupTotals) Totals(context.Context) (domain.BackupTotals, error) {
	return f.totals, nil
}

type fakeAuditReader struct {
	last24h int
}

func (f *fakeAuditReader) Stats(context.Context, time.Time) (domain.AuditStats, error) {
	return domain.AuditStats{Last24h: f.last24h}, nil
}
