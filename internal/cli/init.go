// Package cli holds the start-up steps shared by the presupuesto binaries.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"presupuesto/internal/auth"
	"presupuesto/internal/backend"
	"presupuesto/internal/config"
	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/store"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(os.Getenv("LOG_LEVEL"))
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and exits on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Household loads the members and seed categories. Without a household
// file the built-in defaults are used.
func Household(logger *log.Logger, cfg *config.Config) (*auth.Family, *config.Household) {
	if cfg.HouseholdFile == "" {
		return auth.NewFamily(nil), nil
	}
	h, err := config.LoadHousehold(cfg.HouseholdFile)
	if err != nil {
		logger.Error("Failed to load household file", log.FieldError, err, "path", cfg.HouseholdFile)
		os.Exit(1)
	}
	logger.Info("Household loaded", "path", cfg.HouseholdFile, "members", len(h.FamilyUsers()))
	return auth.NewFamily(h.FamilyUsers()), h
}

// OpenStore opens the configured backend and starts the snapshot hub on it.
// The returned cleanup closes the backend.
func OpenStore(ctx context.Context, logger *log.Logger, cfg *config.Config, household *config.Household) (*store.Hub, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := res.Cleanup
	if cleanup == nil {
		cleanup = func() error { return nil }
	}

	var seed []core.Category
	if household != nil {
		seed = household.SeedCategories()
	}
	hub := store.NewHub(res.Repository, seed, logger.Logger)
	if err := hub.Start(ctx); err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("load store: %w", err)
	}
	return hub, cleanup, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, stop
}
