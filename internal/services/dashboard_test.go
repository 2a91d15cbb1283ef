package services

import (
	"context"
	"testing"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/store"
	"presupuesto/internal/store/memory"
)

func startHub(t *testing.T) (*store.Hub, *memory.Store) {
	t.Helper()
	repo := memory.New()
	hub := store.NewHub(repo, []core.Category{
		{ID: "1", Name: "Alimentación", Budget: 500},
		{ID: "2", Name: "Vivienda", Budget: 1200},
	}, nil)
	if err := hub.Start(context.Background()); err != nil {
		t.Fatalf("start hub: %v", err)
	}
	return hub, repo
}

func TestDashboardView(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()
	for _, e := range []core.Expense{
		{CategoryID: "1", Amount: 100, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "a", UserID: "u1"},
		{CategoryID: "1", Amount: 50, Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), Description: "b", UserID: "u1"},
		{CategoryID: "2", Amount: 200, Date: time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), Description: "c", UserID: "u1"},
	} {
		if _, err := hub.CreateExpense(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	d := NewDashboard(hub, time.UTC)
	v, ok := d.View(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatalf("expected view")
	}
	if v.View.Totals.Spent != 150 || v.View.Totals.Budget != 1700 || v.View.MonthExpenses != 2 {
		t.Fatalf("unexpected totals %+v", v.View.Totals)
	}
	if len(v.View.Daily) != 31 || v.Revision != 4 {
		t.Fatalf("unexpected daily len %d rev %d", len(v.View.Daily), v.Revision)
	}
}

func TestDashboardNotReady(t *testing.T) {
	hub := store.NewHub(memory.New(), nil, nil)
	d := NewDashboard(hub, time.UTC)
	if d.Ready() {
		t.Fatalf("dashboard must not be ready before first load")
	}
	if _, ok := d.View(time.Now()); ok {
		t.Fatalf("expected no view")
	}
}

func TestDashboardChanges(t *testing.T) {
	hub, _ := startHub(t)
	d := NewDashboard(hub, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := d.Changes(ctx)
	first := <-changes
	if first.Revision != 1 {
		t.Fatalf("expected initial revision 1, got %d", first.Revision)
	}

	if _, err := hub.CreateExpense(ctx, core.Expense{CategoryID: "1", Amount: 10, Date: time.Now(), Description: "x", UserID: "u1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	select {
	case next := <-changes:
		if next.Revision != 2 {
			t.Fatalf("expected revision 2, got %d", next.Revision)
		}
	case <-time.After(time.Second):
		t.Fatalf("no dashboard after write")
	}

	cancel()
	for range changes {
	}
}
