package main

import (
	"errors"
	"time"

	"pfms/internal/amqp"
	"pfms/internal/cache"
	"pfms/internal/cli"
	applog "pfms/internal/log"
	"pfms/internal/storage"
)

const (
	usernameCacheSize = 1024
	usernameCacheTTL  = 10 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentNotifier)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AlertsEnabled() {
		cli.Fatal(logger, "Notifier needs a broker", errors.New("AMQP_URL is not set"))
	}

	n := &notifier{logger: logger, sleep: sleepContext}

	var (
		repo  *storage.SQLiteRepository
		names *cachedUsernames
	)
	if cfg.DataBackend == "sqlite" {
		var err error
		repo, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize SQLite repository", err)
		}
		names = newCachedUsernames(repo, usernameCacheSize, usernameCacheTTL)
		n.accounts = names
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func() {
		if repo != nil {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close repository", applog.FieldError, err)
			}
		}
	})
	ctx = applog.NewContext(ctx, logger)
	if names != nil {
		cache.StartJanitor(ctx, usernameCacheTTL, names.names)
	}

	logger.Info("Starting pfms-notifier",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	_ = n.run(ctx, func() (consumer, error) {
		return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	})

	cli.WaitForShutdown(ctx, done)
}
