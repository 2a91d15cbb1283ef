package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "presupuesto.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteCategoriesUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, c := range core.DefaultCategories() {
		if err := repo.PutCategory(ctx, c); err != nil {
			t.Fatalf("put %s: %v", c.ID, err)
		}
	}
	updated := core.Category{ID: "4", Name: "Ocio", Budget: 300, Color: "#000000", Icon: "🎬"}
	if err := repo.PutCategory(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 5 || cats[0].ID != "1" {
		t.Fatalf("unexpected categories %+v", cats)
	}
	if cats[3] != updated {
		t.Fatalf("expected full replace, got %+v", cats[3])
	}

	if err := repo.DeleteCategory(ctx, "4"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteCategory(ctx, "4"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteExpensesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	bogota := time.FixedZone("COT", -5*3600)
	older := time.Date(2024, 3, 2, 8, 15, 0, 0, bogota)
	newer := time.Date(2024, 3, 10, 19, 45, 0, 0, bogota)

	a, err := repo.CreateExpense(ctx, core.Expense{CategoryID: "1", Amount: 100, Date: older, Description: "mercado", UserID: "u1", UserName: "Papá"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := repo.CreateExpense(ctx, core.Expense{CategoryID: "gone", Amount: 50, Date: newer, Description: "taxi", UserID: "u2", UserName: "Mamá"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected date descending, got %+v", list)
	}
	if !list[1].Date.Equal(older) || list[1].UserName != "Papá" || list[1].Amount != 100 {
		t.Fatalf("round trip mismatch %+v", list[1])
	}

	if _, err := repo.CreateExpense(ctx, core.Expense{CategoryID: "1", Amount: 10, Date: newer}); err == nil {
		t.Fatalf("expected validation error for blank description")
	}
	if err := repo.DeleteExpense(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteExpense(ctx, a.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
