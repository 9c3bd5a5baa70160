package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"kas/internal/amqp"
	"kas/internal/cli"
	apphttp "kas/internal/http"
	"kas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting kas")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it ledger entries simply stay local.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in local-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - entries will sync via kas-worker")
		}
	} else {
		logger.Info("AMQP disabled - entries will not sync to the mirror")
	}

	transactions := services.NewTransactionService(repo, amqpClient)
	reconciler := services.NewReconciler(repo, cfg.DefaultCurrency)

	srv := apphttp.NewServer(":"+cfg.Port, repo, transactions, reconciler, cfg.DefaultCurrency)

	ctx, stop := cli.NotifyShutdown(context.Background())
	defer stop()

	// One pass on startup so charges missed while the app was closed post
	// immediately.
	if result, err := reconciler.Reconcile(ctx, time.Now()); err != nil {
		logger.Error("Startup reconciliation failed", "error", err)
	} else {
		logger.Info("Startup reconciliation complete", "deductions_made", result.DeductionsMade, "failed", result.Failed)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting kas server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				result, err := reconciler.Reconcile(gctx, now)
				if err != nil {
					logger.Error("Periodic reconciliation failed", "error", err)
					continue
				}
				if result.DeductionsMade > 0 {
					transactions.FlushSummaries()
				}
				logger.Info("Periodic reconciliation complete",
					"deductions_made", result.DeductionsMade,
					"failed", result.Failed)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
	}
	logger.Info("kas shutdown complete")
}
