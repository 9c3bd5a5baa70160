package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"kas/internal/amqp"
	"kas/internal/cli"
	"kas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting kas-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		return
	}
	defer amqpClient.Close()

	if cfg.MirrorURL == "" {
		logger.Warn("No MIRROR_URL configured - messages will be consumed but not mirrored")
	}

	syncWorker := worker.NewSyncWorker(repo, cfg.MirrorURL, cfg.SyncBatchSize)

	ctx, stop := cli.NotifyShutdown(context.Background())
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.Consume(gctx, func(body []byte) error {
			return syncWorker.HandleMessage(gctx, body)
		})
	})

	// Periodic sweep for entries created while the broker was unreachable.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := syncWorker.EnqueuePending(gctx, amqpClient); err != nil {
					logger.Error("Pending sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("Worker error", "error", err)
	}
	logger.Info("kas-worker shutdown complete")
}
