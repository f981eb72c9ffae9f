package backup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/backup"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

func TestRepo_CreateGetDelete(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := backup.New(pool)
	ctx := context.Background()

	actor := uuid.New()
	id := uuid.New()
	info := domain.BackupInfo{
		ID:          id,
		Label:       "Weekly",
		Description: "before semester",
		Kind:        domain.SnapshotKindManual,
		Collections: []domain.Collection{domain.CollectionAITools, domain.CollectionTemplates},
		TotalItems:  15,
		SizeBytes:   2048,
		Checksum:    "abc123",
		BlobKey:     "backups/" + id.String() + ".json",
		CreatedBy:   &actor,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := repo.Create(ctx, info); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Label != "Weekly" || got.TotalItems != 15 || got.Checksum != "abc123" {
		t.Errorf("unexpected metadata: %+v", got)
	}
	if len(got.Collections) != 2 || got.Collections[1] != domain.CollectionTemplates {
		t.Errorf("Collections mismatch: %v", got.Collections)
	}
	if got.CreatedBy == nil || *got.CreatedBy != actor {
		t.Errorf("CreatedBy mismatch: %v", got.CreatedBy)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID after delete: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
	}
}

func TestRepo_List_NewestFirst(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := backup.New(pool)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	older := testhelper.SeedBackup(t, pool, base)
	newer := testhelper.SeedBackup(t, pool, base.Add(time.Minute))

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	posOlder, posNewer := -1, -1
	for i, b := range list {
		switch b.ID {
		case older.ID:
			posOlder = i
		case newer.ID:
			posNewer = i
		}
	}
	if posOlder < 0 || posNewer < 0 {
		t.Fatal("seeded backups missing from list")
	}
	if posNewer > posOlder {
		t.Errorf("expected newer backup before older one (newer at %d, older at %d)", posNewer, posOlder)
	}
}

func TestRepo_Totals(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := backup.New(pool)

	testhelper.SeedBackup(t, pool, time.Now())

	totals, err := repo.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.Count < 1 || totals.TotalSizeBytes < 128 {
		t.Errorf("unexpected totals: %+v", totals)
	}
	if totals.NewestAt == nil || totals.OldestAt == nil {
		t.Error("expected newest/oldest timestamps")
	}
}
