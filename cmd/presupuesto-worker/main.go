package main

import (
	"context"
	"errors"
	"os"

	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"presupuesto/internal/amqp"
	"presupuesto/internal/cli"
	"presupuesto/internal/log"
	"presupuesto/internal/sheets"
	gsheet "presupuesto/internal/sheets/google"
	ledgermem "presupuesto/internal/sheets/memory"
	"presupuesto/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger.Info("Starting presupuesto-worker")

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	_, household := cli.Household(logger, cfg)
	hub, closeStore, err := cli.OpenStore(ctx, logger, cfg, household)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer closeStore()

	var ledger sheets.LedgerWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			ExpensesSheet:      cfg.GoogleSheetName,
			SummarySheet:       cfg.GoogleSummarySheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			Location:           cfg.Location(),
			Logger:             logger.Logger,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("Google Sheets ledger initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		ledger = ledgermem.New()
		logger.Warn("Google Sheets disabled, ledger rows are kept in memory only")
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.Logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		ledgerWorker := worker.NewLedgerWorker(ledger, logger.Logger)
		g.Go(func() error {
			return client.ConsumeExpenseCreated(gctx, ledgerWorker.HandleExpenseCreated)
		})
	} else {
		logger.Info("AMQP_URL not set, skipping expense mirroring")
	}

	monthClose := worker.NewMonthClose(hub.Backend(), ledger, cfg.Location(), logger.Logger)
	g.Go(func() error {
		return monthClose.Run(gctx, cfg.MonthCloseSchedule)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
