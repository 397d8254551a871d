package ports

import (
	"context"

	"pfms/internal/core"
)

// Ports implemented by every storage backend.
type (
	AccountStore interface {
		Register(ctx context.Context, username, password string) (core.User, error)
		// Authenticate succeeds only on an exact match of both fields.
		Authenticate(ctx context.Context, username, password string) (core.User, error)
		ResolveID(ctx context.Context, username string) (int64, error)
		ResolveUsername(ctx context.Context, id int64) (string, error)
	}

	// TransactionLister returns every transaction of a user ordered by id.
	TransactionLister interface {
		ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	}

	TransactionStore interface {
		TransactionLister
		AddTransaction(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error)
		GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
		// UpdateTransaction rewrites the row identified by t.ID in place.
		UpdateTransaction(ctx context.Context, userID int64, t core.Transaction) error
		// DeleteTransaction returns the number of rows removed; zero is not an error.
		DeleteTransaction(ctx context.Context, userID, id int64) (int64, error)
	}

	// BudgetLister returns the budget limits of a user keyed by category.
	BudgetLister interface {
		GetBudgets(ctx context.Context, userID int64) (map[string]float64, error)
	}

	BudgetStore interface {
		BudgetLister
		SetBudget(ctx context.Context, userID int64, category string, amount float64) error
		ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
	}

	// Store is the full persistence surface used by the ledger service.
	Store interface {
		AccountStore
		TransactionStore
		BudgetStore
	}
)
