package main

import (
	"context"
	"net/http"
	"time"

	"prestiti/internal/amqp"
	"prestiti/internal/cli"
	apphttp "prestiti/internal/http"
	"prestiti/internal/services"
	"prestiti/internal/views"
	"prestiti/internal/watch"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	// AMQP is optional at startup: without it, payments still land in
	// SQLite and the worker's pending-sync scan picks them up later.
	var publisher services.Publisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, payment sync deferred to pending scan", "error", err)
	} else {
		publisher = amqpClient
	}

	hub := watch.NewHub()
	ledger := services.NewLedgerService(repo, hub, publisher)
	viewsSvc := views.NewService(repo, hub)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, viewsSvc, repo)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // SSE streams stay open indefinitely
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := ledger.Close(); err != nil {
			logger.Error("Ledger close error", "error", err)
		}
	})

	logger.Info("Starting prestiti server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
