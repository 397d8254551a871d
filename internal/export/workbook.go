// Package export writes a user's dashboard as an Excel workbook.
package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"pfms/internal/report"
)

const (
	SheetTransactions = "Transactions"
	SheetMonthly      = "Monthly"
	SheetCategories   = "Categories"
	SheetBudgets      = "Budgets"
	SheetSummary      = "Summary"
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	dataStyle   int
	err         error
}

// table writes a header row and data rows starting at A1. The first error
// sticks and later calls are no-ops.
func (w *sheetWriter) table(sheet string, headers []any, rows [][]any, widths ...float64) {
	if w.err != nil {
		return
	}
	if sheet != SheetTransactions {
		if _, err := w.f.NewSheet(sheet); err != nil {
			w.err = fmt.Errorf("new sheet %s: %w", sheet, err)
			return
		}
	}

	if err := w.f.SetSheetRow(sheet, "A1", &headers); err != nil {
		w.err = fmt.Errorf("write %s header: %w", sheet, err)
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = w.f.SetCellStyle(sheet, "A1", last, w.headerStyle)

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			w.err = fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
			return
		}
	}
	if len(rows) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(headers), len(rows)+1)
		_ = w.f.SetCellStyle(sheet, "A2", end, w.dataStyle)
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = w.f.SetColWidth(sheet, col, col, width)
	}
}

// WriteWorkbook renders every dashboard view into its own sheet and writes
// the xlsx bytes to out.
func WriteWorkbook(out io.Writer, username string, d report.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTransactions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	dataStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder})
	if err != nil {
		return fmt.Errorf("data style: %w", err)
	}

	w := &sheetWriter{f: f, headerStyle: headerStyle, dataStyle: dataStyle}

	txRows := make([][]any, 0, len(d.Transactions))
	for _, t := range d.Transactions {
		txRows = append(txRows, []any{t.ID, t.Date.String(), t.Type.String(), t.Category, t.Amount})
	}
	w.table(SheetTransactions, []any{"ID", "Date", "Type", "Description", "Amount"}, txRows, 8, 12, 10, 30, 12)

	months := d.Monthly.Months()
	monthRows := make([][]any, 0, len(months))
	for _, m := range months {
		monthRows = append(monthRows, []any{m, d.Monthly.Income[m], d.Monthly.Expense[m]})
	}
	w.table(SheetMonthly, []any{"Month", "Income", "Expense"}, monthRows, 10, 12, 12)

	cats := make([]string, 0, len(d.Categories))
	for c := range d.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	catRows := make([][]any, 0, len(cats))
	for _, c := range cats {
		catRows = append(catRows, []any{c, d.Categories[c]})
	}
	w.table(SheetCategories, []any{"Category", "Spent"}, catRows, 30, 12)

	budgetRows := make([][]any, 0, len(d.Budgets))
	for _, b := range d.Budgets {
		status := "OK"
		if b.Exceeded {
			status = "Exceeded"
		}
		budgetRows = append(budgetRows, []any{b.Category, b.Limit, b.Spent, b.Remaining, status})
	}
	w.table(SheetBudgets, []any{"Category", "Limit", "Spent", "Remaining", "Status"}, budgetRows, 30, 12, 12, 12, 10)

	w.table(SheetSummary, []any{"User", "Total Income", "Total Expenses", "Remaining"},
		[][]any{{username, d.Totals.Income, d.Totals.Expenses, d.Totals.Remaining}}, 16, 14, 14, 14)

	if w.err != nil {
		return w.err
	}

	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
