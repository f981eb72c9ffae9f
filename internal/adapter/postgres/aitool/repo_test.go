package aitool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/aitool"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// newRepo sets up a test DB and returns a ready Repo + pool.
func newRepo(t *testing.T) (*aitool.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return aitool.New(pool), pool
}

// ---------------------------------------------------------------------------
// Create + GetByID
// ---------------------------------------------------------------------------

func TestRepo_Create_AndGetByID(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	tool := testhelper.NewAITool()
	tool.Features = []string{"slides", "quiz"}
	tool.VietnameseSupport = true

	created, err := repo.Create(ctx, tool)
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if created.ID != tool.ID {
		t.Errorf("ID mismatch: got %s, want %s", created.ID, tool.ID)
	}

	got, err := repo.GetByID(ctx, tool.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.Name != tool.Name {
		t.Errorf("Name mismatch: got %q, want %q", got.Name, tool.Name)
	}
	if len(got.Features) != 2 || got.Features[1] != "quiz" {
		t.Errorf("Features mismatch: got %v", got.Features)
	}
	if len(got.Subjects) != 1 || got.Subjects[0] != "Toán" {
		t.Errorf("Subjects mismatch: got %v", got.Subjects)
	}
	if !got.VietnameseSupport {
		t.Error("VietnameseSupport should be true")
	}
	if !got.CreatedAt.Equal(tool.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %s, want %s", got.CreatedAt, tool.CreatedAt)
	}
}

func TestRepo_Create_DuplicateID(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	existing := testhelper.SeedAITool(t, pool)

	dup := testhelper.NewAITool()
	dup.ID = existing.ID
	_, err := repo.Create(ctx, dup)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update / Exists / Delete
// ---------------------------------------------------------------------------

func TestRepo_Update(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	tool := testhelper.SeedAITool(t, pool)
	tool.Name = "Renamed"
	tool.Popularity = 99
	tool.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	updated, err := repo.Update(ctx, tool)
	if err != nil {
		t.Fatalf("Update: unexpected error: %v", err)
	}
	if updated.Name != "Renamed" || updated.Popularity != 99 {
		t.Errorf("unexpected updated tool: %+v", updated)
	}

	missing := testhelper.NewAITool()
	if _, err := repo.Update(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update missing: expected ErrNotFound, got %v", err)
	}
}

func TestRepo_Exists_AndDelete(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	tool := testhelper.SeedAITool(t, pool)

	exists, err := repo.Exists(ctx, tool.ID)
	if err != nil || !exists {
		t.Fatalf("Exists: got %v, %v", exists, err)
	}

	if err := repo.Delete(ctx, tool.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, tool.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
	}

	exists, err = repo.Exists(ctx, tool.ID)
	if err != nil || exists {
		t.Fatalf("Exists after delete: got %v, %v", exists, err)
	}
}

// ---------------------------------------------------------------------------
// List / filters
// ---------------------------------------------------------------------------

func TestRepo_List_Filters(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	math := testhelper.SeedAITool(t, pool, func(a *domain.AITool) {
		a.Subjects = []string{"Toán", "Tin học"}
		a.Category = domain.ToolCategoryAssessment
		a.VietnameseSupport = true
	})
	lit := testhelper.SeedAITool(t, pool, func(a *domain.AITool) {
		a.Subjects = []string{"Văn"}
		a.Category = domain.ToolCategoryPresentation
	})
	ids := []uuid.UUID{math.ID, lit.ID}

	tests := []struct {
		name   string
		filter domain.ToolFilter
		want   []uuid.UUID
	}{
		{"all", domain.ToolFilter{IDs: ids}, []uuid.UUID{math.ID, lit.ID}},
		{"subject fold", domain.ToolFilter{IDs: ids, Subjects: []string{" tin HỌC "}}, []uuid.UUID{math.ID}},
		{"category", domain.ToolFilter{IDs: ids, Categories: []domain.ToolCategory{domain.ToolCategoryPresentation}}, []uuid.UUID{lit.ID}},
		{"vietnamese", domain.ToolFilter{IDs: ids, VietnameseOnly: true}, []uuid.UUID{math.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: unexpected error: %v", err)
			}
			if total != len(tt.want) || len(got) != len(tt.want) {
				t.Fatalf("got %d items (total %d), want %d", len(got), total, len(tt.want))
			}
			for _, want := range tt.want {
				found := false
				for _, g := range got {
					if g.ID == want {
						found = true
					}
				}
				if !found {
					t.Errorf("missing %s in result", want)
				}
			}
		})
	}
}

func TestRepo_List_Search(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	tool := testhelper.SeedAITool(t, pool, func(a *domain.AITool) { a.Description = "Tạo 100% câu hỏi trắc nghiệm" })

	search := "100%"
	got, _, err := repo.List(ctx, domain.ToolFilter{IDs: []uuid.UUID{tool.ID}, Search: &search})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected literal percent match, got %d", len(got))
	}
}

// ---------------------------------------------------------------------------
// Bulk operations
// ---------------------------------------------------------------------------

func TestRepo_BulkUpdate(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	a := testhelper.SeedAITool(t, pool)
	b := testhelper.SeedAITool(t, pool)
	untouched := testhelper.SeedAITool(t, pool)

	trending := true
	paid := domain.PricingModelPaid
	n, err := repo.BulkUpdate(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()}, domain.ToolPatch{Trending: &trending, PricingModel: &paid})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if n != 2 {
		t.Fatalf("BulkUpdate affected %d rows, want 2", n)
	}

	got, _ := repo.GetByID(ctx, a.ID)
	if !got.Trending || got.PricingModel != domain.PricingModelPaid {
		t.Errorf("patch not applied: %+v", got)
	}
	other, _ := repo.GetByID(ctx, untouched.ID)
	if other.Trending {
		t.Error("untouched tool should not be trending")
	}
}

func TestRepo_BulkUpsert(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	existing := testhelper.SeedAITool(t, pool)
	changed := existing
	changed.Name = "Changed by import"
	fresh := testhelper.NewAITool()

	n, err := repo.BulkUpsert(ctx, []domain.AITool{changed, fresh}, false)
	if err != nil {
		t.Fatalf("BulkUpsert: %v", err)
	}
	if n != 1 {
		t.Fatalf("BulkUpsert without overwrite wrote %d rows, want 1", n)
	}
	got, _ := repo.GetByID(ctx, existing.ID)
	if got.Name != existing.Name {
		t.Errorf("existing row modified without overwrite: %q", got.Name)
	}

	n, err = repo.BulkUpsert(ctx, []domain.AITool{changed}, true)
	if err != nil {
		t.Fatalf("BulkUpsert overwrite: %v", err)
	}
	if n != 1 {
		t.Fatalf("BulkUpsert overwrite wrote %d rows, want 1", n)
	}
	got, _ = repo.GetByID(ctx, existing.ID)
	if got.Name != "Changed by import" {
		t.Errorf("overwrite not applied: %q", got.Name)
	}
}

func TestRepo_DeleteByIDs(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	a := testhelper.SeedAITool(t, pool)
	b := testhelper.SeedAITool(t, pool)

	n, err := repo.DeleteByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	if err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if n != 2 {
		t.Fatalf("DeleteByIDs removed %d rows, want 2", n)
	}
}
