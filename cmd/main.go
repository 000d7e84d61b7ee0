package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/internal/adapters/http/site"
	"github.com/okian/attrition/internal/adapters/http/swagger"
	"github.com/okian/attrition/internal/adapters/pipeline"
	app "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/config"
	"github.com/okian/attrition/internal/domain/employee"
	"github.com/okian/attrition/internal/domain/prediction"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Re-initialize with the configured format
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// The classifier is loaded exactly once; the process does not serve
	// without it.
	classifier, info, err := loadClassifier(ctx, cfg, loggerInstance)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithLogger(loggerInstance.Named("service")),
		app.WithClassifier(classifier),
		app.WithModelInfo(info),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	handler, err := newHandler(cfg, svc, loggerInstance)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// loadClassifier reads the artifact named by cfg and publishes its identity.
func loadClassifier(ctx context.Context, cfg *config.Config, log logger.Logger) (prediction.Predicts, app.ModelInfo, error) {
	start := time.Now()
	classifier, err := pipeline.Load(cfg.ModelPath, pipeline.WithThreshold(cfg.DecisionThreshold))
	if err != nil {
		return nil, app.ModelInfo{}, fmt.Errorf("failed to load model %q: %w", cfg.ModelPath, err)
	}
	loadMs := float64(time.Since(start).Microseconds()) / 1000.0

	info := app.ModelInfo{Name: cfg.ModelPath, Estimator: "unknown"}
	probCapable := false
	if d, ok := pipeline.Describe(classifier); ok {
		info = app.ModelInfo{Name: d.Name, Estimator: d.Estimator}
		probCapable = d.ProbabilityCapable
	}
	metrics.SetModelInfo(info.Name, info.Estimator, probCapable, loadMs)

	// A column mismatch surfaces per request as schema_mismatch; warn early.
	if err := pipeline.CheckColumns(classifier, employee.Fields); err != nil {
		log.Warn(ctx, "model columns differ from the form schema", logger.Error(err))
	}

	log.Info(ctx, "model loaded",
		logger.String("path", cfg.ModelPath),
		logger.String("name", info.Name),
		logger.String("estimator", info.Estimator),
		logger.Bool("probabilityCapable", probCapable),
		logger.Float64("loadMs", loadMs),
	)
	return classifier, info, nil
}

// newHandler wires every route onto one mux behind the request-id middleware.
func newHandler(cfg *config.Config, svc *app.Service, log logger.Logger) (http.Handler, error) {
	timeout := time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(mux)

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc,
		api.WithRequestTimeout(timeout),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(mux)

	// Register the web form on /
	form, err := site.NewHandler(svc,
		site.WithRequestTimeout(timeout),
		site.WithLogger(log.Named("site")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build form handler: %w", err)
	}
	form.Register(mux)

	return api.RequestIDMiddleware(mux), nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		// Average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
