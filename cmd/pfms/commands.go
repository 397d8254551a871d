package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"pfms/internal/core"
	"pfms/internal/export"
	applog "pfms/internal/log"
	"pfms/internal/render"
	"pfms/internal/report"
	"pfms/internal/services"
)

type app struct {
	svc      *services.LedgerService
	out      io.Writer
	barWidth int
	dbPath   string
	backend  string
	now      func() time.Time
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "init":
		return a.initCmd(args)
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "add":
		return a.add(ctx, args)
	case "edit":
		return a.edit(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "budget":
		return a.budget(ctx, args)
	case "budgets":
		return a.budgets(ctx, args)
	case "dashboard":
		return a.dashboard(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "help", "-h", "--help":
		usage(a.out)
		return nil
	default:
		return usageError{fmt.Sprintf("unknown command %q; run 'pfms help'", cmd)}
	}
}

type credentials struct {
	user, password string
}

func newFlagSet(name string, creds *credentials) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if creds != nil {
		fs.StringVar(&creds.user, "user", "", "username")
		fs.StringVar(&creds.user, "u", "", "username (shorthand)")
		fs.StringVar(&creds.password, "password", "", "password")
		fs.StringVar(&creds.password, "p", "", "password (shorthand)")
	}
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return usageError{flagHelp(fs)}
		}
		return usageError{fmt.Sprintf("%s: %v", fs.Name(), err)}
	}
	if fs.NArg() > 0 {
		return usageError{fmt.Sprintf("%s: unexpected arguments %v", fs.Name(), fs.Args())}
	}
	return nil
}

func flagHelp(fs *flag.FlagSet) string {
	msg := fmt.Sprintf("Usage of %s:", fs.Name())
	fs.VisitAll(func(f *flag.Flag) {
		msg += fmt.Sprintf("\n  -%s\t%s", f.Name, f.Usage)
	})
	return msg
}

func (a *app) authenticate(ctx context.Context, creds credentials) (core.User, error) {
	if creds.user == "" {
		return core.User{}, usageError{"-user is required"}
	}
	return a.svc.Login(ctx, creds.user, creds.password)
}

func (a *app) initCmd(args []string) error {
	fs := newFlagSet("init", nil)
	if err := parse(fs, args); err != nil {
		return err
	}
	// The backend applies the schema on open.
	if a.backend == "memory" {
		fmt.Fprintln(a.out, "Using in-memory storage; nothing is persisted.")
		return nil
	}
	fmt.Fprintf(a.out, "Database ready at %s\n", a.dbPath)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	var creds credentials
	if err := parse(newFlagSet("register", &creds), args); err != nil {
		return err
	}
	u, err := a.svc.Register(ctx, creds.user, creds.password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registration successful. Welcome, %s (id %d).\n", u.Username, u.ID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	var creds credentials
	if err := parse(newFlagSet("login", &creds), args); err != nil {
		return err
	}
	u, err := a.authenticate(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Login successful. Welcome back, %s.\n", u.Username)
	return nil
}

// txFlags are the transaction fields shared by add and edit.
type txFlags struct {
	typ, amount, category, date string
}

func (f *txFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.typ, "type", "", "Income or Expense")
	fs.StringVar(&f.amount, "amount", "", "positive amount, '.' or ',' as decimal separator")
	fs.StringVar(&f.category, "category", "", "description of the transaction")
	fs.StringVar(&f.date, "date", "", "date as YYYY-MM-DD or MM/DD/YYYY")
}

// apply overwrites the fields of t that were set on the command line.
func (f *txFlags) apply(fs *flag.FlagSet, t *core.Transaction) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "type":
			t.Type, err = core.ParseTransactionType(f.typ)
		case "amount":
			t.Amount, err = core.ParseAmount(f.amount)
		case "category":
			t.Category = f.category
		case "date":
			t.Date, err = core.ParseDate(f.date)
		}
	})
	return err
}

func (a *app) today() core.Date {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	y, m, d := now().Date()
	return core.NewDate(y, int(m), d)
}

func (a *app) add(ctx context.Context, args []string) error {
	var (
		creds credentials
		tf    txFlags
	)
	fs := newFlagSet("add", &creds)
	tf.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	t := core.Transaction{Date: a.today()}
	if err := tf.apply(fs, &t); err != nil {
		return err
	}

	u, err := a.authenticate(ctx, creds)
	if err != nil {
		return err
	}
	saved, err := a.svc.AddTransaction(ctx, u.ID, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added %s #%d: %s $%.2f on %s\n",
		saved.Type, saved.ID, saved.Category, saved.Amount, saved.Date)
	return nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	var (
		creds credentials
		tf    txFlags
		id    int64
	)
	fs := newFlagSet("edit", &creds)
	tf.register(fs)
	fs.Int64Var(&id, "id", 0, "transaction id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if id <= 0 {
		return usageError{"-id is required"}
	}

	u, err := a.authenticate(ctx, creds)
	if err != nil {
		return err
	}
	t, err := a.svc.GetTransaction(ctx, u.ID, id)
	if err != nil {
		return fmt.Errorf("transaction %d: %w", id, err)
	}
	if err := tf.apply(fs, &t); err != nil {
		return err
	}
	if err := a.svc.UpdateTransaction(ctx, u.ID, t); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated transaction #%d.\n", id)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	var (
		creds credentials
		id    int64
	)
	fs := newFlagSet("delete", &creds)
	fs.Int64Var(&id, "id", 0, "transaction id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if id <= 0 {
		return usageError{"-id is required"}
	}

	u, err := a.authenticate(ctx, creds)
	if err != nil {
		return err
	}
	n, err := a.svc.DeleteTransaction(ctx, u.ID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(a.out, "No transaction #%d to delete.\n", id)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted transaction #%d.\n", id)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	var creds credentials
	if err := parse(newFlagSet("list", &creds), args); err != nil {
		return err
	}
	u, err := a.authenticate(ctx, creds)
	if err != nil {
		return err
	}
	txs, err := a.svc.ListTransactions(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Transactions(txs))
	return nil
}

func (a *app) budget(ctx context.Context, args []string) error {
	var (
		creds    credentials
		category string
		amount   string
	)
	fs := newFlagSet("budget", &creds)
	fs.StringVar(&category, "category", "", "category the limit applies to (exact match)")
	fs.StringVar(&amount, "amount", "", "limit, zero or more")
	if err := parse(fs, args); err != nil {
		return err
	}

	limit, err := core.ParseAmount(amount)
	if err != nil {
		return err
	}
	u, err := a.authenticate(ctx, creds)
	if err != nil {
		return err
	}
	if err := a.svc.SetBudget(ctx, u.ID, category, limit); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Budget for %s set to $%.2f.\n", category, limit)
	return nil
}

func (a *app) budgets(ctx context.Context, args []string) error {
	var creds credentials
	if err := parse(newFlagSet("budgets", &creds), args); err != nil {
		return err
	}
	d, err := a.loadDashboard(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Budgets(d.Budgets))
	return nil
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	var creds credentials
	if err := parse(newFlagSet("dashboard", &creds), args); err != nil {
		return err
	}
	d, err := a.loadDashboard(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Dashboard(creds.user, d, a.barWidth))
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	var (
		creds credentials
		path  string
	)
	fs := newFlagSet("export", &creds)
	fs.StringVar(&path, "o", "", "output file (default pfms-<user>.xlsx)")
	if err := parse(fs, args); err != nil {
		return err
	}
	d, err := a.loadDashboard(ctx, creds)
	if err != nil {
		return err
	}
	if path == "" {
		path = fmt.Sprintf("pfms-%s.xlsx", creds.user)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteWorkbook(f, creds.user, d); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	applog.FromContext(ctx).InfoContext(ctx, "Workbook exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldUserID, d.UserID,
		"path", path)
	fmt.Fprintf(a.out, "Exported %d transactions to %s\n", len(d.Transactions), path)
	return nil
}

func (a *app) loadDashboard(ctx context.Context, creds credentials) (report.Dashboard, error) {
	u, err := a.authenticate(ctx, creds)
	if err != nil {
		return report.Dashboard{}, err
	}
	return a.svc.Dashboard(ctx, u.ID)
}

// describe turns domain errors into the messages shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, core.ErrUsernameTaken):
		return "Registration failed: username already exists."
	case errors.Is(err, core.ErrInvalidCredentials):
		return "Login failed: invalid username or password."
	case errors.Is(err, core.ErrEmptyUsername):
		return "Please enter a username."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Please enter a valid amount."
	case errors.Is(err, core.ErrInvalidDate):
		return "Please enter a valid date (YYYY-MM-DD or MM/DD/YYYY)."
	case errors.Is(err, core.ErrEmptyCategory):
		return "Please enter a category."
	case errors.Is(err, core.ErrCategoryTooLong):
		return fmt.Sprintf("Category must be at most %d characters.", core.MaxCategoryLen)
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be Income or Expense."
	case errors.Is(err, core.ErrNotFound):
		return "Not found: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
