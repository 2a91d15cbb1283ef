package main

import (
	"context"
	"errors"
	"os"

	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"presupuesto/internal/cli"
	"presupuesto/internal/log"
	"presupuesto/internal/telegram"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentTelegram)
	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_TOKEN is required for the bot")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", log.FieldError, err)
		os.Exit(1)
	}

	family, household := cli.Household(logger, cfg)
	hub, closeStore, err := cli.OpenStore(ctx, logger, cfg, household)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("Failed to close store", log.FieldError, err)
		}
	}()

	app := cli.BuildApp(ctx, logger, cfg, hub)
	defer app.Close()

	bot := telegram.New(api, cfg.TelegramChatID, telegram.Deps{
		Family:    family,
		Entry:     app.Entry,
		Dashboard: app.Dashboard,
		Charts:    app.Charts,
		Logger:    logger.Logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(gctx, api)
	})
	g.Go(func() error {
		if err := hub.WatchExternal(gctx); err != nil && gctx.Err() == nil {
			logger.Warn("External change feed stopped, other writers will not be seen", log.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Bot stopped gracefully")
}
