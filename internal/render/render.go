// Package render draws report views for the terminal.
package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"pfms/internal/core"
	"pfms/internal/report"
)

const DefaultBarWidth = 40

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	alertStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	summaryStyle = lipgloss.NewStyle().Bold(true).Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// Transactions lists transactions in id order, with the category shown as
// the description.
func Transactions(txs []core.Transaction) string {
	if len(txs) == 0 {
		return mutedStyle.Render("No transactions yet.")
	}
	t := newTable("ID", "Date", "Type", "Description", "Amount")
	for _, tx := range txs {
		date := tx.Date.String()
		if date == "" {
			date = "-"
		}
		t.Row(strconv.FormatInt(tx.ID, 10), date, tx.Type.String(), tx.Category, money(tx.Amount))
	}
	return t.String()
}

func Budgets(statuses []report.BudgetStatus) string {
	if len(statuses) == 0 {
		return mutedStyle.Render("No budgets set.")
	}
	t := newTable("Category", "Limit", "Spent", "Remaining", "Status").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(statuses) && statuses[row].Exceeded {
				return cellStyle.Inherit(alertStyle)
			}
			return cellStyle
		})
	for _, s := range statuses {
		status := "OK"
		if s.Exceeded {
			status = "EXCEEDED"
		}
		t.Row(s.Category, money(s.Limit), money(s.Spent), money(s.Remaining), status)
	}
	return t.String()
}

func bar(value, peak float64, width int) string {
	if value <= 0 || peak <= 0 || width <= 0 {
		return ""
	}
	n := int(math.Round(value / peak * float64(width)))
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// Monthly draws income and expense bars per month, scaled to the largest
// monthly value.
func Monthly(m report.MonthlySeries, width int) string {
	months := m.Months()
	if len(months) == 0 {
		return mutedStyle.Render("No dated transactions.")
	}

	var peak float64
	for _, k := range months {
		peak = math.Max(peak, math.Max(m.Income[k], m.Expense[k]))
	}

	lines := []string{titleStyle.Render("Income vs Expenses by month")}
	for _, k := range months {
		lines = append(lines,
			fmt.Sprintf("%s  Income   %s %s", k, incomeStyle.Render(bar(m.Income[k], peak, width)), money(m.Income[k])),
			fmt.Sprintf("%s  Expense  %s %s", strings.Repeat(" ", len(k)), expenseStyle.Render(bar(m.Expense[k], peak, width)), money(m.Expense[k])),
		)
	}
	return strings.Join(lines, "\n")
}

// Categories lists expense categories by amount, largest first, with their
// share of total spending.
func Categories(breakdown map[string]float64, width int) string {
	if len(breakdown) == 0 {
		return mutedStyle.Render("No expenses recorded.")
	}

	type slice struct {
		category string
		amount   float64
	}
	slices := make([]slice, 0, len(breakdown))
	var total float64
	for c, v := range breakdown {
		slices = append(slices, slice{c, v})
		total += v
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].amount != slices[j].amount {
			return slices[i].amount > slices[j].amount
		}
		return slices[i].category < slices[j].category
	})

	nameWidth := 0
	for _, s := range slices {
		nameWidth = max(nameWidth, lipgloss.Width(s.category))
	}

	lines := []string{titleStyle.Render("Expenses by category")}
	for _, s := range slices {
		pct := s.amount / total * 100
		lines = append(lines, fmt.Sprintf("%-*s %5.1f%% %s  %s",
			nameWidth, s.category, pct,
			expenseStyle.Render(bar(s.amount, total, width)),
			mutedStyle.Render(report.Tooltip(s.category, s.amount))))
	}
	return strings.Join(lines, "\n")
}

func Summary(t report.Totals) string {
	style := summaryStyle
	if t.Remaining < 0 {
		style = style.BorderForeground(lipgloss.Color("#f38ba8"))
	}
	return style.Render(t.String())
}

// Dashboard stacks every view of d under a title line.
func Dashboard(username string, d report.Dashboard, width int) string {
	if width <= 0 {
		width = DefaultBarWidth
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Dashboard for %s", username)),
		"",
		Summary(d.Totals),
		"",
		Monthly(d.Monthly, width),
		"",
		Categories(d.Categories, width),
		"",
		titleStyle.Render("Budgets"),
		Budgets(d.Budgets),
		"",
		titleStyle.Render("Transactions"),
		Transactions(d.Transactions),
	)
}
