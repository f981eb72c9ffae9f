package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres"
	"github.com/heartmarshall/eduprompt-backend/internal/adapter/postgres/testhelper"
)

const insertTool = `INSERT INTO ai_tools (id, name, category, subjects, grade_levels, pricing_model, difficulty)
	 VALUES ($1, $2, 'OTHER', '{Toán}', '{10}', 'FREE', 'BEGINNER')`

// toolExists checks whether an ai_tools row with the given ID exists in the database.
func toolExists(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM ai_tools WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("toolExists query: %v", err)
	}
	return exists
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		_, err := q.Exec(ctx, insertTool, id, "commit-test")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !toolExists(t, pool, id) {
		t.Fatal("expected tool to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if _, execErr := q.Exec(ctx, insertTool, id, "rollback-test"); execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if toolExists(t, pool, id) {
		t.Fatal("expected tool NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}

		if toolExists(t, pool, id) {
			t.Fatal("expected tool NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if _, err := q.Exec(ctx, insertTool, id, "panic-test"); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInSavepoint_FailureKeepsOuterWork(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	kept := uuid.New()
	dropped := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := tm.RunInSavepoint(ctx, func(ctx context.Context) error {
			_, err := postgres.QuerierFromCtx(ctx, pool).Exec(ctx, insertTool, kept, "kept")
			return err
		}); err != nil {
			return err
		}

		spErr := tm.RunInSavepoint(ctx, func(ctx context.Context) error {
			q := postgres.QuerierFromCtx(ctx, pool)
			if _, err := q.Exec(ctx, insertTool, dropped, "dropped"); err != nil {
				return err
			}
			// Duplicate primary key aborts the savepoint.
			_, err := q.Exec(ctx, insertTool, kept, "duplicate")
			return err
		})
		if spErr == nil {
			t.Fatal("expected savepoint error for duplicate key")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !toolExists(t, pool, kept) {
		t.Fatal("expected first savepoint to be committed")
	}
	if toolExists(t, pool, dropped) {
		t.Fatal("expected failed savepoint to be rolled back")
	}
}

func TestRunInSavepoint_WithoutOuterTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()
	err := tm.RunInSavepoint(context.Background(), func(ctx context.Context) error {
		_, err := postgres.QuerierFromCtx(ctx, pool).Exec(ctx, insertTool, id, "standalone")
		return err
	})
	if err != nil {
		t.Fatalf("RunInSavepoint returned error: %v", err)
	}
	if !toolExists(t, pool, id) {
		t.Fatal("expected standalone savepoint to commit")
	}
}

func TestRunInTx_QuerierFromCtx_UsesTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	id := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if _, err := q.Exec(ctx, insertTool, id, "ctx-test"); err != nil {
			return err
		}

		// Should be visible within the transaction.
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ai_tools WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			t.Fatal("expected tool to be visible within the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !toolExists(t, pool, id) {
		t.Fatal("expected tool to exist after committed transaction")
	}
}
