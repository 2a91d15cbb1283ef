package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"presupuesto/internal/auth"
	"presupuesto/internal/cache"
	"presupuesto/internal/cli"
	apphttp "presupuesto/internal/http"
	"presupuesto/internal/log"
)

const maxSessions = 256

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

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

	authenticator := auth.NewAuthenticator(family, cfg.SessionTTL, maxSessions, logger.Logger)
	caches := cache.NewManager(logger.Logger)
	caches.Register("sessions", authenticator.Sessions())
	caches.Register("charts", app.Charts.Cache())

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Family:             family,
		Authenticator:      authenticator,
		Categories:         app.Categories,
		Expenses:           app.Expenses,
		Entry:              app.Entry,
		Dashboard:          app.Dashboard,
		Charts:             app.Charts,
		Location:           cfg.Location(),
		Logger:             logger,
		AuthRequired:       cfg.AuthRequired,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting presupuesto server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := hub.WatchExternal(gctx); err != nil && gctx.Err() == nil {
			logger.Warn("External change feed stopped, other writers will not be seen", log.FieldError, err)
		}
		return nil
	})
	g.Go(func() error {
		caches.Run(gctx, 5*time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
