package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pfms/internal/core"
	"pfms/internal/export"
	"pfms/internal/services"
	"pfms/internal/storage/memory"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, alerts bytes.Buffer
	a := &app{
		svc:      services.NewLedgerService(memory.New(), printAlerts(&alerts)),
		out:      &out,
		barWidth: 20,
		backend:  "memory",
		now:      func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) },
	}
	return a, &out, &alerts
}

func runOK(t *testing.T, a *app, args ...string) {
	t.Helper()
	require.NoError(t, a.run(context.Background(), args[0], args[1:]))
}

var alice = []string{"-user", "alice", "-password", "pw"}

func with(cmd string, extra ...string) []string {
	return append(append([]string{cmd}, alice...), extra...)
}

func TestRegisterAndLogin(t *testing.T) {
	a, out, _ := newTestApp(t)
	ctx := context.Background()

	runOK(t, a, with("register")...)
	assert.Contains(t, out.String(), "Registration successful")

	err := a.run(ctx, "register", alice)
	require.ErrorIs(t, err, core.ErrUsernameTaken)
	assert.Equal(t, "Registration failed: username already exists.", describe(err))
	assert.Equal(t, "Category must be at most 200 characters.", describe(core.ErrCategoryTooLong))

	runOK(t, a, with("login")...)
	assert.Contains(t, out.String(), "Welcome back, alice")

	err = a.run(ctx, "login", []string{"-u", "alice", "-p", "nope"})
	require.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestAddValidatesInput(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	runOK(t, a, with("register")...)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"non-numeric amount", with("add", "-type", "expense", "-amount", "abc", "-category", "Food")[1:], core.ErrInvalidAmount},
		{"missing category", with("add", "-type", "expense", "-amount", "5")[1:], core.ErrEmptyCategory},
		{"bad date", with("add", "-type", "expense", "-amount", "5", "-category", "Food", "-date", "2024-13")[1:], core.ErrInvalidDate},
		{"bad type", with("add", "-type", "gift", "-amount", "5", "-category", "Food")[1:], core.ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.run(ctx, "add", tt.args)
			require.ErrorIs(t, err, tt.want)
			var stderr bytes.Buffer
			assert.Equal(t, 1, exitCode(err, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}

	txs, err := a.svc.ListTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestTransactionLifecycle(t *testing.T) {
	a, out, alerts := newTestApp(t)
	ctx := context.Background()
	runOK(t, a, with("register")...)

	runOK(t, a, with("add", "-type", "Income", "-amount", "100", "-category", "Salary", "-date", "2024-01-05")...)
	runOK(t, a, with("add", "-type", "expense", "-amount", "40,00", "-category", "Food", "-date", "01/10/2024")...)
	runOK(t, a, with("add", "-type", "expense", "-amount", "3.5", "-category", "Coffee")...)

	txs, err := a.svc.ListTransactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "2024-01-10", txs[1].Date.String())
	assert.Equal(t, "2024-03-15", txs[2].Date.String(), "date defaults to today")

	runOK(t, a, with("budget", "-category", "Food", "-amount", "50")...)
	assert.Empty(t, alerts.String())

	runOK(t, a, with("edit", "-id", "2", "-amount", "60")...)
	assert.Contains(t, alerts.String(), "exceeded your budget for Food")

	edited, err := a.svc.GetTransaction(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 60.0, edited.Amount)
	assert.Equal(t, "Food", edited.Category)

	out.Reset()
	runOK(t, a, with("delete", "-id", "99")...)
	assert.Contains(t, out.String(), "No transaction #99")

	runOK(t, a, with("delete", "-id", "3")...)
	assert.Contains(t, out.String(), "Deleted transaction #3")

	out.Reset()
	runOK(t, a, with("list")...)
	assert.Contains(t, out.String(), "Salary")
	assert.NotContains(t, out.String(), "Coffee")

	out.Reset()
	runOK(t, a, with("budgets")...)
	assert.Contains(t, out.String(), "EXCEEDED")

	out.Reset()
	runOK(t, a, with("dashboard")...)
	assert.Contains(t, out.String(), "Total Income: $100.00 | Total Expenses: $60.00 | Remaining Budget: $40.00")
}

func TestEditRequiresOwnership(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	runOK(t, a, with("register")...)
	runOK(t, a, "register", "-user", "bob", "-password", "pw")
	runOK(t, a, with("add", "-type", "expense", "-amount", "5", "-category", "Food")...)

	err := a.run(ctx, "edit", []string{"-user", "bob", "-password", "pw", "-id", "1", "-amount", "1"})
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestExport(t *testing.T) {
	a, out, _ := newTestApp(t)
	runOK(t, a, with("register")...)
	runOK(t, a, with("add", "-type", "expense", "-amount", "12", "-category", "Books", "-date", "2024-02-02")...)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	runOK(t, a, with("export", "-o", path)...)
	assert.Contains(t, out.String(), "Exported 1 transactions")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetCategories)
	require.NoError(t, err)
	assert.Equal(t, []string{"Books", "12"}, rows[1])
}

func TestUsageErrors(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  string
		args []string
	}{
		{"unknown command", "transfer", nil},
		{"missing user", "list", nil},
		{"missing id", "delete", alice},
		{"unknown flag", "list", []string{"-verbose"}},
		{"stray argument", "login", append(append([]string{}, alice...), "extra")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.run(ctx, tt.cmd, tt.args)
			var stderr bytes.Buffer
			assert.Equal(t, 2, exitCode(err, &stderr), "err: %v", err)
			assert.NotEmpty(t, strings.TrimSpace(stderr.String()))
		})
	}
}

func TestInitCommand(t *testing.T) {
	a, out, _ := newTestApp(t)
	runOK(t, a, "init")
	assert.Contains(t, out.String(), "in-memory")

	a.backend, a.dbPath = "sqlite", "./data/pfms.db"
	out.Reset()
	runOK(t, a, "init")
	assert.Contains(t, out.String(), "./data/pfms.db")
}
