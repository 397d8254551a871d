package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"pfms/internal/core"
	applog "pfms/internal/log"
)

const transactionColumns = `id, userId, amount, category, date, type`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		date    string
		txnType string
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Amount, &t.Category, &date, &txnType); err != nil {
		return core.Transaction{}, err
	}
	t.Date = core.ParseStoredDate(date)
	t.StoredDate = date
	t.Type = core.TransactionType(txnType)
	return t, nil
}

// AddTransaction appends one row for userID and returns it with its id.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	date := t.DateText()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO Transactions (userId, amount, category, date, type) VALUES (?, ?, ?, ?, ?)`,
		userID, t.Amount, t.Category, date, string(t.Type))
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Transaction{}, fmt.Errorf("user %d: %w", userID, core.ErrNotFound)
		}
		slog.ErrorContext(ctx, "Error adding transaction", applog.FieldUserID, userID, applog.FieldError, err)
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction id: %w", err)
	}

	t.ID = id
	t.UserID = userID
	t.StoredDate = date

	slog.InfoContext(ctx, "Transaction saved",
		applog.FieldTransactionID, id,
		applog.FieldUserID, userID,
		"type", t.Type,
		applog.FieldCategory, t.Category,
		applog.FieldAmount, t.Amount,
		"date", t.Date.String())

	return t, nil
}

// ListTransactions returns the user's transactions ordered by id. An empty
// result is a non-nil empty slice.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM Transactions WHERE userId = ? ORDER BY id ASC`, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching transactions", applog.FieldUserID, userID, applog.FieldError, err)
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "Error fetching transactions", applog.FieldUserID, userID, applog.FieldError, err)
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetTransaction returns core.ErrNotFound when the row is missing or owned by
// another user.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM Transactions WHERE id = ? AND userId = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching transaction", applog.FieldTransactionID, id, applog.FieldError, err)
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// UpdateTransaction rewrites t in place. Only rows owned by userID match.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE Transactions SET amount = ?, category = ?, date = ?, type = ? WHERE id = ? AND userId = ?`,
		t.Amount, t.Category, t.DateText(), string(t.Type), t.ID, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Error updating transaction", applog.FieldTransactionID, t.ID, applog.FieldError, err)
		return fmt.Errorf("update transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction updated", applog.FieldTransactionID, t.ID, applog.FieldUserID, userID)
	return nil
}

// DeleteTransaction removes the row when it belongs to userID and reports how
// many rows were deleted.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM Transactions WHERE id = ? AND userId = ?`, id, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Error deleting transaction", applog.FieldTransactionID, id, applog.FieldError, err)
		return 0, fmt.Errorf("delete transaction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	slog.InfoContext(ctx, "Transaction delete processed",
		applog.FieldTransactionID, id,
		applog.FieldUserID, userID,
		"rows_affected", n)
	return n, nil
}
