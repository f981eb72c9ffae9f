package backup

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// In-memory repositories with just enough behaviour for snapshot round trips.

type fakeToolRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]domain.AITool
	failWrite map[uuid.UUID]error
	writes    int
}

func newFakeToolRepo(tools ...domain.AITool) *fakeToolRepo {
	r := &fakeToolRepo{items: map[uuid.UUID]domain.AITool{}, failWrite: map[uuid.UUID]error{}}
	for _, t := range tools {
		r.items[t.ID] = t
	}
	return r
}

func (r *fakeToolRepo) ListAll(_ context.Context, f domain.ToolFilter) ([]domain.AITool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AITool
	for _, t := range r.items {
		if t.Matches(f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeToolRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakeToolRepo) Create(_ context.Context, t domain.AITool) (*domain.AITool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failWrite[t.ID]; err != nil {
		return nil, err
	}
	if _, ok := r.items[t.ID]; ok {
		return nil, fmt.Errorf("ai_tool %s: %w", t.ID, domain.ErrAlreadyExists)
	}
	r.items[t.ID] = t
	r.writes++
	return &t, nil
}

func (r *fakeToolRepo) Update(_ context.Context, t domain.AITool) (*domain.AITool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failWrite[t.ID]; err != nil {
		return nil, err
	}
	if _, ok := r.items[t.ID]; !ok {
		return nil, fmt.Errorf("ai_tool %s: %w", t.ID, domain.ErrNotFound)
	}
	r.items[t.ID] = t
	r.writes++
	return &t, nil
}

func (r *fakeToolRepo) DeleteAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.items)
	r.items = map[uuid.UUID]domain.AITool{}
	return n, nil
}

func (r *fakeToolRepo) get(id uuid.UUID) (domain.AITool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	return t, ok
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

func (r *fakeTemplateRepo) ListAll(_ context.Context, f domain.TemplateFilter) ([]domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Template
	for _, t := range r.items {
		if t.Matches(f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *fakeTemplateRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

func (r *fakeTemplateRepo) Create(_ context.Context, t domain.Template) (*domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[t.ID]; ok {
		return nil, fmt.Errorf("template %s: %w", t.ID, domain.ErrAlreadyExists)
	}
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

func (r *fakeTemplateRepo) DeleteAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.items)
	r.items = map[uuid.UUID]domain.Template{}
	return n, nil
}

type fakeBackupRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]domain.BackupInfo
	createErr error
}

func newFakeBackupRepo() *fakeBackupRepo {
	return &fakeBackupRepo{items: map[uuid.UUID]domain.BackupInfo{}}
}

func (r *fakeBackupRepo) Create(_ context.Context, b domain.BackupInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.items[b.ID] = b
	return nil
}

func (r *fakeBackupRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.BackupInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("backup %s: %w", id, domain.ErrNotFound)
	}
	return &b, nil
}

func (r *fakeBackupRepo) List(_ context.Context) ([]domain.BackupInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.BackupInfo, 0, len(r.items))
	for _, b := range r.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeBackupRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("backup %s: %w", id, domain.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

type purgeCounter struct {
	mu sync.Mutex
	n  int
}

func (p *purgeCounter) Purge() {
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
}

func (p *purgeCounter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}
