// Package report derives the monthly series, category breakdown, totals and
// budget status views from a user's transaction list.
package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"pfms/internal/core"
)

// MonthlySeries maps a YYYY-MM month key to the summed amount per type.
type MonthlySeries struct {
	Income  map[string]float64
	Expense map[string]float64
}

// Months returns the sorted union of month keys in both series.
func (m MonthlySeries) Months() []string {
	seen := make(map[string]struct{}, len(m.Income)+len(m.Expense))
	for k := range m.Income {
		seen[k] = struct{}{}
	}
	for k := range m.Expense {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type Totals struct {
	Income    float64
	Expenses  float64
	Remaining float64
}

func (t Totals) String() string {
	return fmt.Sprintf("Total Income: $%.2f | Total Expenses: $%.2f | Remaining Budget: $%.2f",
		t.Income, t.Expenses, t.Remaining)
}

type BudgetStatus struct {
	Category  string
	Limit     float64
	Spent     float64
	Remaining float64
	Exceeded  bool
}

// sums accumulates amounts per key without float drift.
type sums map[string]decimal.Decimal

func (s sums) add(key string, v float64) {
	s[key] = s[key].Add(decimal.NewFromFloat(v))
}

func (s sums) floats() map[string]float64 {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = v.InexactFloat64()
	}
	return out
}

// Monthly groups amounts by month and type. Transactions without a usable
// date are left out.
func Monthly(txs []core.Transaction) MonthlySeries {
	income, expense := sums{}, sums{}
	for _, t := range txs {
		key := t.Date.MonthKey()
		if key == "" {
			continue
		}
		switch t.Type {
		case core.Income:
			income.add(key, t.Amount)
		case core.Expense:
			expense.add(key, t.Amount)
		}
	}
	return MonthlySeries{Income: income.floats(), Expense: expense.floats()}
}

// CategoryBreakdown sums expense amounts per category. Income rows are ignored.
func CategoryBreakdown(txs []core.Transaction) map[string]float64 {
	out := sums{}
	for _, t := range txs {
		if t.Type == core.Expense {
			out.add(t.Category, t.Amount)
		}
	}
	return out.floats()
}

func Summarize(txs []core.Transaction) Totals {
	var income, expenses decimal.Decimal
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			income = income.Add(decimal.NewFromFloat(t.Amount))
		case core.Expense:
			expenses = expenses.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return Totals{
		Income:    income.InexactFloat64(),
		Expenses:  expenses.InexactFloat64(),
		Remaining: income.Sub(expenses).InexactFloat64(),
	}
}

// Tooltip is the hover label of a category slice.
func Tooltip(category string, amount float64) string {
	return fmt.Sprintf("%s: $%.2f", category, amount)
}

// BudgetStatuses compares each budget with the expenses recorded under the
// exact same category. A budget is exceeded when spending is strictly above
// its limit.
func BudgetStatuses(txs []core.Transaction, budgets map[string]float64) []BudgetStatus {
	spent := CategoryBreakdown(txs)
	out := make([]BudgetStatus, 0, len(budgets))
	for category, limit := range budgets {
		s := spent[category]
		out = append(out, BudgetStatus{
			Category:  category,
			Limit:     limit,
			Spent:     s,
			Remaining: decimal.NewFromFloat(limit).Sub(decimal.NewFromFloat(s)).InexactFloat64(),
			Exceeded:  s > limit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
