package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gosus/adapters/stats/primitives"
	"gosus/internal"
	"gosus/internal/analysis"
	"gosus/internal/config"
	"gosus/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"
)

// analysisWait bounds how long a request queues for an analysis slot
var analysisWait = 10 * time.Second

// App is the JSON API over analysis sessions
type App struct {
	router   *chi.Mux
	config   *config.Config
	store    *session.Store
	engine   *analysis.Engine
	analyses *semaphore.Weighted
	logger   *internal.Logger
}

// NewApp creates the API with an empty session store
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	logger := internal.DefaultLogger.WithField("component", "ui")

	app := &App{
		router:   chi.NewRouter(),
		config:   cfg,
		store:    session.NewStore(cfg.Limits.SessionTTL, logger),
		engine:   analysis.NewEngine(primitives.New(), logger),
		analyses: semaphore.NewWeighted(int64(cfg.Limits.MaxConcurrentAnalyses)),
		logger:   logger,
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
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)
	a.router.Post("/api/validate", a.handleValidate)

	a.router.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", a.handleCreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.handleGetSession)
			r.Delete("/", a.handleDeleteSession)

			r.Put("/studies/{index}", a.handleSetActive)
			r.Post("/studies/{index}/toggle", a.handleToggleStudy)

			r.Post("/dependence", a.handleChooseDependence)
			r.Post("/method", a.handleChooseMethod)

			r.Post("/analysis", a.handleRunAnalysis)
			r.Get("/assumptions", a.handleAssumptions)
			r.Get("/report", a.handleReport)
		})
	})
}

// Handler exposes the router, mostly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Store exposes the session store
func (a *App) Store() *session.Store {
	return a.store
}

// Start serves until ctx is cancelled, sweeping idle sessions meanwhile,
// then shuts down gracefully.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.config.Server.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepInterval := a.config.Limits.SessionTTL / 2
	if sweepInterval < time.Second {
		sweepInterval = time.Second
	}
	go a.store.RunSweeper(ctx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting SUS analysis server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withAnalysisSlot runs fn while holding one of the bounded analysis slots
func (a *App) withAnalysisSlot(ctx context.Context, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, analysisWait)
	defer cancel()

	if err := a.analyses.Acquire(ctx, 1); err != nil {
		a.logger.Warn("no analysis slot available: %v", err)
		return errBusy
	}
	defer a.analyses.Release(1)
	return fn()
}
