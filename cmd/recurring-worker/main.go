package main

import (
	"context"
	"time"

	"contas/internal/cli"
	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/services"
)

// recurring-worker materializes fixed bills for the current month and the
// configured number of months ahead, on startup and then on a fixed interval.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentMaterializer)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
	}
	var events services.EventPublisher
	if amqpClient != nil {
		events = amqpClient
	}

	ledger := services.NewLedgerService(repo, events, services.SystemClock(), services.UUIDs())
	materializer := services.NewRecurrenceMaterializer(repo, ledger)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Recurrence materializer configured",
		"interval", cfg.MaterializeInterval,
		"months_ahead", cfg.MaterializeAhead,
		"sqlite_db", cfg.SQLiteDBPath)

	materializeWindow(runCtx, logger, materializer, cfg.MaterializeAhead)

	ticker := time.NewTicker(cfg.MaterializeInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				materializeWindow(runCtx, logger, materializer, cfg.MaterializeAhead)
			}
		}
	}()

	cli.WaitForShutdown(runCtx, done)
}

func materializeWindow(ctx context.Context, logger *log.Logger, materializer *services.RecurrenceMaterializer, monthsAhead int) {
	now := time.Now()
	current := core.NewMonthKey(now.Year(), int(now.Month()))

	for i := 0; i <= monthsAhead; i++ {
		month := current.AddMonths(i)
		count, err := materializer.EnsureMonth(ctx, month)
		if err != nil {
			logger.ErrorContext(ctx, "Materialization failed",
				log.FieldError, err, log.FieldRefMonth, month)
			continue
		}
		if count > 0 {
			logger.InfoContext(ctx, "Materialized fixed bills",
				log.FieldRefMonth, month, "transactions_created", count)
		}
	}
}
