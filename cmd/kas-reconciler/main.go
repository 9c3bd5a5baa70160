package main

import (
	"context"
	"time"

	"kas/internal/cli"
	"kas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting kas-reconciler")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Charges are posted through the repository; the kas-worker pending
	// sweep picks them up for mirroring, so no broker connection is needed
	// here.
	reconciler := services.NewReconciler(repo, cfg.DefaultCurrency)

	ctx, stop := cli.NotifyShutdown(context.Background())
	defer stop()

	logger.Info("Reconciler configured",
		"interval", cfg.ReconcileInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	// Run initial pass on startup
	logger.Info("Running initial reconciliation...")
	if result, err := reconciler.Reconcile(ctx, time.Now()); err != nil {
		logger.Error("Initial reconciliation failed", "error", err)
	} else {
		logger.Info("Initial reconciliation complete",
			"deductions_made", result.DeductionsMade,
			"failed", result.Failed)
	}

	ticker := time.NewTicker(cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("kas-reconciler shutdown complete")
			return
		case now := <-ticker.C:
			result, err := reconciler.Reconcile(ctx, now)
			if err != nil {
				logger.Error("Periodic reconciliation failed", "error", err)
				continue
			}
			logger.Info("Periodic reconciliation complete",
				"deductions_made", result.DeductionsMade,
				"failed", result.Failed,
				"next_check", now.Add(cfg.ReconcileInterval).Format("15:04:05"))
		}
	}
}
