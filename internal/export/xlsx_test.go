package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"presupuesto/internal/analytics"
	"presupuesto/internal/core"
)

func TestHistoryXLSX(t *testing.T) {
	cats := []core.Category{{ID: "1", Name: "Alimentación", Budget: 500}}
	exps := []core.Expense{
		{ID: "b", CategoryID: "1", Amount: 50000, Date: time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC), Description: "mercado", UserName: "Mamá"},
		{ID: "a", CategoryID: "gone", Amount: 100, Date: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), Description: "huérfano", UserName: "Papá"},
	}
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	view := analytics.Compute(cats, exps, now)

	data, err := HistoryXLSX(analytics.History(cats, exps), view.Categories, time.UTC)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "2024-03-10 15:00" || rows[1][2] != "Alimentación" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][2] != core.UnknownCategoryName {
		t.Fatalf("unknown category should export as %q, got %v", core.UnknownCategoryName, rows[2])
	}

	catRows, err := f.GetRows(categorySheet)
	if err != nil {
		t.Fatalf("category rows: %v", err)
	}
	if len(catRows) != 2 || catRows[1][0] != "Alimentación" {
		t.Fatalf("unexpected category rows %v", catRows)
	}
}

func TestHistoryXLSXEmpty(t *testing.T) {
	if _, err := HistoryXLSX(nil, nil, nil); err != nil {
		t.Fatalf("empty export: %v", err)
	}
}
