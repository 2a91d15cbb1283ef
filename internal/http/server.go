// Package http exposes the household budget as a JSON API with a live
// dashboard feed.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"presupuesto/internal/auth"
	"presupuesto/internal/charts"
	"presupuesto/internal/log"
	"presupuesto/internal/services"
)

const headerFamilyUser = "X-Family-User"

// Deps are the services the API is built on.
type Deps struct {
	Family        *auth.Family
	Authenticator *auth.Authenticator
	Categories    *services.CategoryService
	Expenses      *services.ExpenseService
	Entry         *services.QuickEntry
	Dashboard     *services.Dashboard
	Charts        *charts.Renderer
	Location      *time.Location
	Logger        *log.Logger

	// AuthRequired rejects /api calls without a live bearer session.
	AuthRequired       bool
	CORSOrigins        []string
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	deps        Deps
	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	upgrader    websocket.Upgrader
	started     time.Time

	// live ends open websocket feeds on Shutdown; hijacked connections are
	// not tracked by http.Server.
	live         context.Context
	stopLive     context.CancelFunc
	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Family == nil {
		deps.Family = auth.NewFamily(nil)
	}

	s := &Server{
		deps:        deps,
		logger:      deps.Logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(deps.RateLimitPerMinute),
		metrics:     &securityMetrics{},
		started:     time.Now(),
	}
	s.live, s.stopLive = context.WithCancel(context.Background())
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.withTracing)
	r.Use(s.withSecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", headerFamilyUser},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(s.withRateLimit)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.handleLogin)

		api.Group(func(p chi.Router) {
			p.Use(s.withSession)
			p.Post("/auth/logout", s.handleLogout)
			p.Get("/family", s.handleFamily)

			p.Route("/categories", func(c chi.Router) {
				c.Get("/", s.handleListCategories)
				c.Post("/", s.handleCreateCategory)
				c.Put("/{id}", s.handleUpdateCategory)
				c.Delete("/{id}", s.handleDeleteCategory)
			})

			p.Route("/expenses", func(e chi.Router) {
				e.Get("/", s.handleHistory)
				e.Post("/", s.handleCreateExpense)
				e.Post("/quick", s.handleQuickExpense)
				e.Get("/export.xlsx", s.handleExport)
			})

			p.Route("/dashboard", func(d chi.Router) {
				d.Get("/", s.handleDashboard)
				d.Get("/daily.png", s.handleChart(charts.KindDaily))
				d.Get("/categories.png", s.handleChart(charts.KindCategories))
			})

			p.Get("/live", s.handleLive)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: msgNotFound})
	})
	return r
}

// checkOrigin accepts same-host requests, clients without an Origin header
// and the configured CORS origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host {
		return true
	}
	for _, allowed := range s.deps.CORSOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Shutdown closes live feeds, stops the rate limiter and drains in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.stopLive()
		s.rateLimiter.stop()
	})
	return s.Server.Shutdown(ctx)
}
