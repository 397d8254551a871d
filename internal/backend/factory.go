package backend

import (
	"context"
	"fmt"
	"log/slog"

	"pfms/internal/amqp"
	applog "pfms/internal/log"
	"pfms/internal/ports"
	"pfms/internal/services"
	"pfms/internal/storage"
	"pfms/internal/storage/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store ports.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", applog.FieldDBPath, config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	publishers := services.MultiPublisher{}
	if config.LocalAlerts != nil {
		publishers = append(publishers, config.LocalAlerts)
	}
	if client := f.dialAMQP(ctx, config); client != nil {
		publishers = append(publishers, client)
	}

	var alerts services.AlertPublisher
	if len(publishers) > 0 {
		alerts = publishers
	}

	svc := services.NewLedgerService(store, alerts)
	return &Result{Service: svc, Cleanup: svc.Close}, nil
}

// dialAMQP returns nil when alerts are disabled or the broker is unreachable;
// the ledger keeps working without a transport.
func (f *DefaultFactory) dialAMQP(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without alerts transport", "error", err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
