package storage

import (
	"context"
	"fmt"
	"log/slog"

	"pfms/internal/core"
	applog "pfms/internal/log"
)

// SetBudget inserts the limit for (userID, category) or overwrites the
// existing one. The category is used verbatim.
func (r *SQLiteRepository) SetBudget(ctx context.Context, userID int64, category string, amount float64) error {
	if err := core.ValidateBudget(category, amount); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO Budgets (userId, category, amount)
		VALUES (?, ?, ?)
		ON CONFLICT(userId, category)
		DO UPDATE SET amount = excluded.amount`,
		userID, category, amount)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
		}
		slog.ErrorContext(ctx, "Error setting budget", applog.FieldUserID, userID, applog.FieldCategory, category, applog.FieldError, err)
		return fmt.Errorf("upsert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget set", applog.FieldUserID, userID, applog.FieldCategory, category, applog.FieldAmount, amount)
	return nil
}

// GetBudgets returns the user's limits keyed by category.
func (r *SQLiteRepository) GetBudgets(ctx context.Context, userID int64) (map[string]float64, error) {
	budgets, err := r.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(budgets))
	for _, b := range budgets {
		out[b.Category] = b.Amount
	}
	return out, nil
}

// ListBudgets returns the user's budgets ordered by category.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, userId, category, amount FROM Budgets WHERE userId = ? ORDER BY category ASC`, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Error retrieving budgets", applog.FieldUserID, userID, applog.FieldError, err)
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Category, &b.Amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}
