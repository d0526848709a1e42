package ui

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"assocreport/adapters/stats/senses"
	"assocreport/domain/dataset"
	"assocreport/internal"
	"assocreport/internal/config"
)

// maxBodyBytes bounds uploaded datasets
const maxBodyBytes = 32 << 20

// App represents the HTTP application
type App struct {
	router  *chi.Mux
	config  Config
	dataset *dataset.Dataset
	plan    *config.Plan
	logger  *internal.Logger
}

// Config holds HTTP application configuration
type Config struct {
	Port    string
	Options senses.ChiSquareOptions
	Workers int
}

// NewApp creates the HTTP application. ds is the dataset served by /reports/plan and may be nil.
func NewApp(cfg Config, ds *dataset.Dataset, plan *config.Plan, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	if plan == nil {
		plan = config.DefaultPlan()
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	app := &App{
		router:  chi.NewRouter(),
		config:  cfg,
		dataset: ds,
		plan:    plan,
		logger:  logger,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Post("/api/association", a.handleAssociation)
	a.router.Get("/reports/plan", a.handlePlanReport)
}

// ServeHTTP lets the App be used as an http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (a *App) Start(ctx context.Context) error {
	addr := ":" + a.config.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting association report server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
