package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"carteira/internal/cache"
	"carteira/internal/cli"
	"carteira/internal/config"
	apphttp "carteira/internal/http"
	"carteira/internal/log"
	"carteira/internal/middleware/auth"
	"carteira/internal/middleware/ratelimit"
	"carteira/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateServer)
	logger := cli.SetupLogger(cfg.LogLevel)
	ctx := context.Background()

	res, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err)
		os.Exit(1)
	}
	defer res.Close()
	store, publisher := res.Store, res.Publisher

	dashboard := services.NewDashboardService(store, cfg.DashboardCacheSize, cfg.DashboardCacheTTL, logger)
	svc := apphttp.Services{
		Households:     services.NewHouseholdService(store, logger),
		Accounts:       services.NewAccountService(store, publisher, dashboard, logger),
		PaymentMethods: services.NewPaymentMethodService(store, publisher, dashboard, logger),
		Categories:     services.NewCategoryService(store, dashboard, logger),
		Transactions:   services.NewTransactionService(store, publisher, dashboard, logger),
		Dashboard:      dashboard,
	}

	janitor := cache.NewJanitor(logger)
	janitor.Register(dashboard.Cache())
	janitor.Start(cfg.DashboardCacheTTL)

	tokens, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("Invalid token configuration", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(svc, apphttp.Options{
		Addr:      ":" + cfg.Port,
		Tokens:    tokens,
		Store:     store,
		RateLimit: ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute},
		Logger:    logger,
	})

	runCtx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, func(ctx context.Context) {
		janitor.Stop()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting carteira server", "port", cfg.Port, "backend", cfg.DataBackend, log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(runCtx, done)
	logger.Info("Server stopped gracefully")
}
