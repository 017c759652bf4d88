package main

import (
	"context"
	"os"

	"carteira/internal/amqp"
	"carteira/internal/cli"
	"carteira/internal/config"
	"carteira/internal/log"
	"carteira/internal/sheets"
	gsheet "carteira/internal/sheets/google"
	sheetsmem "carteira/internal/sheets/memory"
	"carteira/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg.LogLevel)

	logger.Info("Starting carteira-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	if cfg.DataBackend == config.BackendMemory {
		logger.Warn("Memory backend is not shared with the API server; exported rows will be skipped")
	}

	store, err := cli.OpenStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err)
		os.Exit(1)
	}
	defer store.Close()

	var sink sheets.Sink
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		if err := client.EnsureHeader(context.Background()); err != nil {
			logger.Error("Failed to prepare export sheet", log.FieldError, err, "sheet", cfg.GoogleSheetName)
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		sink = sheetsmem.New()
		logger.Info("No GOOGLE_SPREADSHEET_ID provided, exporting to memory only")
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, nil)

	exporter := worker.NewExportWorker(store, sink, logger)
	if err := exporter.Run(ctx, consumer); err != nil {
		logger.Error("Export worker stopped", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
