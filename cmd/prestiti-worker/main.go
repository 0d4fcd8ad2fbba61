package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"prestiti/internal/amqp"
	"prestiti/internal/cli"
	"prestiti/internal/sheets"
	gsheet "prestiti/internal/sheets/google"
	"prestiti/internal/sheets/memory"
	"prestiti/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting prestiti-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var (
		writer  sheets.PaymentWriter
		deleter sheets.PaymentDeleter
	)
	switch cfg.SheetsBackend {
	case "google":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer, deleter = client, client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		store := memory.New()
		writer, deleter = store, store
		logger.Info("In-memory sheet mirror initialized")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, writer, deleter, cfg.SyncBatchSize)
	scanner := worker.NewOverdueScanner(repo)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on payments recorded while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
		// Keep going, the periodic scan retries.
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumePaymentSync(gctx, func(msg *amqp.PaymentSyncMessage) error {
			return syncWorker.HandleSyncMessage(gctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.ProcessPendingPayments(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	g.Go(func() error {
		if err := scanner.Run(gctx, cfg.OverdueInterval); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
