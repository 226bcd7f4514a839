package main

import (
	"context"
	"errors"
	"os"
	"time"

	"contas/internal/amqp"
	"contas/internal/cli"
	"contas/internal/log"
	"contas/internal/worker"
)

// contas-worker consumes transaction events and keeps the month summary
// projection current.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting contas-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitStorage(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The worker exists to consume events; without a broker there is
	// nothing to do.
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient == nil {
		logger.Error("AMQP is required for contas-worker")
		os.Exit(1)
	}
	defer amqpClient.Close()

	summaryWorker := worker.NewSummaryWorker(repo)

	runCtx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Recompute everything once at startup to cover events missed while
	// the worker was down.
	if err := summaryWorker.StartupRefresh(runCtx); err != nil {
		logger.Error("Startup refresh failed", log.FieldError, err)
		// Continue; the consumer still keeps future months current.
	}

	go func() {
		err := amqpClient.ConsumeTransactionEvents(runCtx, func(msg *amqp.TransactionEventMessage) error {
			return summaryWorker.HandleTransactionEvent(runCtx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(runCtx, done)
	logger.Info("contas-worker stopped")
}
