package cli

import (
	"context"
	"time"

	"presupuesto/internal/amqp"
	"presupuesto/internal/charts"
	"presupuesto/internal/config"
	"presupuesto/internal/extraction"
	"presupuesto/internal/log"
	"presupuesto/internal/services"
	"presupuesto/internal/store"
)

// App is the service graph shared by the API and the bot.
type App struct {
	Expenses   *services.ExpenseService
	Entry      *services.QuickEntry
	Categories *services.CategoryService
	Dashboard  *services.Dashboard
	Charts     *charts.Renderer
}

// Close releases the AMQP publisher, if any.
func (a *App) Close() error {
	return a.Expenses.Close()
}

// BuildApp wires the services on hub. AMQP publishing and AI extraction are
// optional: when unconfigured or unreachable the app runs without them.
func BuildApp(ctx context.Context, logger *log.Logger, cfg *config.Config, hub *store.Hub) *App {
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.Logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		} else {
			publisher = client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var extractor extraction.Extractor
	if cfg.GeminiAPIKey != "" {
		client, err := extraction.NewGeminiClient(ctx, extraction.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.GeminiTimeout,
			Logger:  logger.Logger,
		})
		if err != nil {
			logger.Warn("Failed to initialize Gemini client, quick entry disabled", log.FieldError, err)
		} else {
			extractor = client
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, quick entry disabled")
	}

	expenses := services.NewExpenseService(hub, publisher, logger.Logger)
	cacheTTL := cfg.ChartCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &App{
		Expenses:   expenses,
		Entry:      services.NewQuickEntry(extractor, hub, expenses, logger.Logger),
		Categories: services.NewCategoryService(hub, logger.Logger),
		Dashboard:  services.NewDashboard(hub, cfg.Location()),
		Charts:     charts.NewRenderer(cfg.ChartCacheSize, cacheTTL, logger.Logger),
	}
}
