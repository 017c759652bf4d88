package main

import (
	"context"
	"os"
	"time"

	"carteira/internal/cli"
	"carteira/internal/config"
	"carteira/internal/log"
	"carteira/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting recurring-worker", log.FieldOperation, log.OpStartup)

	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend has no recurring templates from the API server")
	}

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err)
		os.Exit(1)
	}
	defer res.Close()

	// The API server's dashboard cache lives in another process; its
	// entries expire after DASHBOARD_CACHE_TTL.
	processor, err := services.NewRecurringProcessor(res.Store, services.Frequency(cfg.RecurringFrequency), res.Publisher, nil, logger)
	if err != nil {
		logger.Error("Failed to create recurring processor", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, nil)

	interval := cfg.RecurringInterval
	logger.Info("Recurring processor configured", "interval", interval.String(), "frequency", cfg.RecurringFrequency, "backend", cfg.DataBackend)

	if count, err := processor.Process(ctx, time.Now()); err != nil {
		logger.Error("Initial processing failed", log.FieldError, err)
	} else {
		logger.Info("Initial processing complete", "transactions_created", count)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cli.WaitForShutdown(ctx, done)
			logger.Info("Recurring-worker shutdown complete")
			return
		case now := <-ticker.C:
			count, err := processor.Process(ctx, now)
			if err != nil {
				logger.Error("Periodic processing failed", log.FieldError, err)
				continue
			}
			logger.Info("Periodic processing complete",
				"transactions_created", count,
				"next_check", now.Add(interval).Format("15:04:05"))
		}
	}
}
