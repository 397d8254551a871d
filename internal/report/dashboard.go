package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"pfms/internal/core"
	"pfms/internal/ports"
)

// Dashboard holds every view of one user's data, all derived from the same
// transaction list.
type Dashboard struct {
	UserID       int64
	Transactions []core.Transaction
	Monthly      MonthlySeries
	Categories   map[string]float64
	Totals       Totals
	Budgets      []BudgetStatus
}

// Build derives the dashboard views from already loaded data.
func Build(userID int64, txs []core.Transaction, budgets map[string]float64) Dashboard {
	return Dashboard{
		UserID:       userID,
		Transactions: txs,
		Monthly:      Monthly(txs),
		Categories:   CategoryBreakdown(txs),
		Totals:       Summarize(txs),
		Budgets:      BudgetStatuses(txs, budgets),
	}
}

// Load fetches transactions and budgets concurrently and builds the dashboard.
func Load(ctx context.Context, txs ports.TransactionLister, budgets ports.BudgetLister, userID int64) (Dashboard, error) {
	var (
		list   []core.Transaction
		limits map[string]float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = txs.ListTransactions(gctx, userID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		limits, err = budgets.GetBudgets(gctx, userID)
		if err != nil {
			return fmt.Errorf("get budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	return Build(userID, list, limits), nil
}
