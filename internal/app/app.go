package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"globalinsights/internal/config"
	apperrors "globalinsights/internal/errors"
	"globalinsights/internal/infrastructure"
	customMiddleware "globalinsights/internal/middleware"
	"globalinsights/internal/services"
	handlers "globalinsights/internal/transport/http"
	ws "globalinsights/internal/websocket"
	"globalinsights/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	WebSocketHub  *ws.Hub
	Services      *ServiceContainer
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	errorHandler *apperrors.ErrorHandler
	listener     net.Listener
	loadDone     chan struct{}
	// startupLoader serves the first load only; nil means the pipeline
	startupLoader services.DatasetLoader
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Datasets *services.DatasetService
	Exports  *services.ExportService
	Health   *services.HealthService
}

// NewApplication wires the services and the router. providers may be nil, in which
// case telemetry is disabled.
func NewApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("configuration is required", nil)
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths, err := config.ResolvePaths(cfg.Data)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	if providers == nil {
		providers, err = infrastructure.InitializeOTel(&infrastructure.OTelConfig{
			ServiceName:    infrastructure.ServiceName,
			ServiceVersion: config.AppVersion,
			Environment:    cfg.AppEnv,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
	}

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		errorHandler:  apperrors.NewErrorHandler(logger, !cfg.IsProduction()),
		loadDone:      make(chan struct{}),
	}

	if err := a.initializeServices(); err != nil {
		return nil, err
	}
	a.setupRouter()
	a.createServer()

	logger.Info("Application initialized",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetFullVersionString()),
		slog.String("environment", cfg.AppEnv),
		slog.String("data_dir", paths.DataDir),
		slog.String("export_dir", paths.ExportDir),
		slog.Bool("load_from_snapshot", cfg.Data.LoadFromSnapshot))
	return a, nil
}

func (a *Application) initializeServices() error {
	wsMetrics, err := ws.NewOTelMetrics(a.OTelProviders.Meter, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize websocket metrics: %w", err)
	}
	a.WebSocketHub = ws.NewHub(a.Config.WebSocket, wsMetrics, a.Logger)

	pipeline := services.NewPipelineLoader(a.Paths.DataDir, a.Metrics, a.Logger)
	if a.Config.Data.LoadFromSnapshot {
		a.startupLoader = services.NewSnapshotLoader(a.Paths.SnapshotFile, pipeline, a.Logger)
	}

	datasets := services.NewDatasetService(pipeline, a.Config,
		services.WithPublisher(a.WebSocketHub),
		services.WithBusinessMetrics(a.Metrics),
		services.WithServiceLogger(a.Logger))

	exports := services.NewExportService(datasets, a.Paths.ExportDir, a.WebSocketHub, a.Metrics, a.Logger)

	collector, err := infrastructure.NewRuntimeCollector(a.OTelProviders.Meter, time.Now())
	if err != nil {
		return fmt.Errorf("failed to initialize runtime collector: %w", err)
	}
	health := services.NewHealthService(a.Paths.DataDir, datasets, a.WebSocketHub, collector, a.Logger)

	a.Services = &ServiceContainer{
		Datasets: datasets,
		Exports:  exports,
		Health:   health,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Only middleware that leaves the ResponseWriter untouched runs ahead of /ws
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Handle(config.WebSocketEndpoint, ws.NewHandler(a.WebSocketHub, a.Config.Security.AllowedOrigins, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	api := handlers.NewAPI(handlers.Dependencies{
		Datasets: a.Services.Datasets,
		Exports:  a.Services.Exports,
		Health:   a.Services.Health,
		Colors:   a.Config.Colors,
	}, a.Logger, a.errorHandler)

	// Order: OTel -> Logger -> Recoverer -> headers -> CORS -> rate limit -> timeout
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders(!a.Config.IsProduction()).Handler)
		r.Use(customMiddleware.CORS(a.Config.Security))
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(a.Config.Security.RateLimit, a.errorHandler, a.Logger).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))
		r.Use(customMiddleware.Compress(5))

		r.Mount(config.APIBasePath, api.Routes())
	})

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start begins serving. The dataset is loaded in the background: until it is in
// place the API answers 503 and readiness reports not_ready.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.WebSocketHub.Start()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	go a.loadDataset(ctx)

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", "http://"+ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))
	return nil
}

// Addr returns the bound listener address, useful when the configured port is 0
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// WaitForDataset blocks until the startup load has finished or ctx ends
func (a *Application) WaitForDataset(ctx context.Context) error {
	select {
	case <-a.loadDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Application) loadDataset(ctx context.Context) {
	defer close(a.loadDone)

	summary, err := a.Services.Datasets.Bootstrap(ctx, a.startupLoader)
	if err != nil {
		a.Logger.ErrorContext(ctx, "Initial dataset load failed",
			slog.String("data_dir", a.Paths.DataDir),
			slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "Initial dataset loaded",
		slog.Int("rows", summary.Rows),
		slog.Int("columns", summary.Columns),
		slog.Int("countries", summary.Countries),
		slog.String("fingerprint", summary.Fingerprint))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
