package memory

import (
	"context"
	"testing"
	"time"

	"presupuesto/internal/core"
)

func TestLedgerAppend(t *testing.T) {
	l := New()
	ref, err := l.AppendExpense(context.Background(), core.Expense{
		ID:          "e-1",
		CategoryID:  "1",
		Amount:      123,
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "t",
	}, "Alimentación")
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if rows := l.Rows(); len(rows) != 1 || rows[0].CategoryName != "Alimentación" {
		t.Fatalf("unexpected rows %+v", rows)
	}

	if _, err := l.AppendExpense(context.Background(), core.Expense{}, "x"); err == nil {
		t.Fatal("expected validation error")
	}

	ref, err = l.AppendMonthSummary(context.Background(), core.MonthSummary{Year: 2024, Month: 2})
	if err != nil || ref != "mem:summary:2024-02" {
		t.Fatalf("unexpected summary append: ref=%q err=%v", ref, err)
	}
	if len(l.Summaries()) != 1 {
		t.Fatal("expected one summary")
	}
}
