package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"pfms/internal/amqp"
	"pfms/internal/cli"
	applog "pfms/internal/log"
	"pfms/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentCLI)

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)
	ctx := applog.NewContext(context.Background(), logger)

	res := cli.InitBackend(ctx, logger, cfg, printAlerts(os.Stderr))
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Cleanup failed", applog.FieldError, err)
		}
	}()

	a := &app{
		svc:      res.Service,
		out:      os.Stdout,
		barWidth: cfg.BarWidth,
		dbPath:   cfg.SQLiteDBPath,
		backend:  cfg.DataBackend,
	}
	code := exitCode(a.run(ctx, os.Args[1], os.Args[2:]), os.Stderr)
	if code != 0 {
		_ = res.Cleanup()
		os.Exit(code)
	}
}

// printAlerts shows budget alerts on the terminal next to any broker delivery.
func printAlerts(w io.Writer) services.AlertPublisher {
	return services.AlertFunc(func(_ context.Context, m *amqp.BudgetAlertMessage) error {
		_, err := fmt.Fprintf(w, "Budget alert: you have exceeded your budget for %s ($%.2f spent of $%.2f).\n",
			m.Category, m.Spent, m.Limit)
		return err
	})
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(stderr, ue.Error())
		return 2
	}
	fmt.Fprintln(stderr, describe(err))
	return 1
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: pfms <command> [flags]

Commands:
  init        create the database schema
  register    create an account            -user -password
  login       check credentials            -user -password
  add         record a transaction         -user -password -type -amount -category [-date]
  edit        change a transaction         -user -password -id [-type] [-amount] [-category] [-date]
  delete      remove a transaction         -user -password -id
  list        list transactions            -user -password
  budget      set a category budget        -user -password -category -amount
  budgets     show budgets and spending    -user -password
  dashboard   show every report view       -user -password
  export      write an xlsx workbook       -user -password [-o file]

Run 'pfms <command> -h' for the flags of a command.
`)
}
