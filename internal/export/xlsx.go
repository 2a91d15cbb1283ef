// Package export writes the expense history as a spreadsheet.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"presupuesto/internal/analytics"
)

const (
	historySheet  = "Gastos"
	categorySheet = "Categorías"
	dateLayout    = "2006-01-02 15:04"
)

var historyHeaders = []string{"Fecha", "Descripción", "Categoría", "Monto", "Miembro"}

// HistoryXLSX renders rows, most recent first, plus a per-category sheet for
// the dashboard's month. Dates are shown in loc.
func HistoryXLSX(rows []analytics.HistoryRow, month []analytics.CategorySpend, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#3b82f6"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return nil, fmt.Errorf("amount style: %w", err)
	}

	if err := writeRow(f, historySheet, 1, toAny(historyHeaders)); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(historySheet, "A1", "E1", headerStyle)

	for i, r := range rows {
		line := i + 2
		values := []interface{}{
			r.Expense.Date.In(loc).Format(dateLayout),
			r.Expense.Description,
			r.Category.Name,
			int64(r.Expense.Amount),
			r.Expense.UserName,
		}
		if err := writeRow(f, historySheet, line, values); err != nil {
			return nil, err
		}
	}
	if len(rows) > 0 {
		_ = f.SetCellStyle(historySheet, "D2", fmt.Sprintf("D%d", len(rows)+1), amountStyle)
	}
	_ = f.SetColWidth(historySheet, "A", "A", 18)
	_ = f.SetColWidth(historySheet, "B", "B", 40)
	_ = f.SetColWidth(historySheet, "C", "E", 16)

	if _, err := f.NewSheet(categorySheet); err != nil {
		return nil, fmt.Errorf("create category sheet: %w", err)
	}
	if err := writeRow(f, categorySheet, 1, []interface{}{"Categoría", "Presupuesto", "Gastado", "% usado"}); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(categorySheet, "A1", "D1", headerStyle)
	for i, c := range month {
		values := []interface{}{c.Category.Name, int64(c.Category.Budget), int64(c.Spent), c.PercentUsed}
		if err := writeRow(f, categorySheet, i+2, values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toAny(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
