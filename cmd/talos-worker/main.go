package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"talos/internal/cli"
	"talos/internal/events"
	"talos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting talos-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// Unlike the server, the worker cannot do anything without a broker.
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the backup worker")
		os.Exit(1)
	}

	st := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer st.Close()

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	backupWorker := worker.NewBackupWorker(st, cfg.ExportDir)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Snapshot once at startup so a fresh deployment has a baseline even
	// before the first movement event arrives.
	if err := backupWorker.Snapshot(ctx); err != nil {
		logger.Error("Startup snapshot failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeMovementEvents(gctx, backupWorker.HandleEvent)
	})
	g.Go(func() error {
		return backupWorker.RunPeriodic(gctx, cfg.SnapshotInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
