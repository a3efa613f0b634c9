package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/attnrisk/internal/adapters/http/api"
	"github.com/okian/attnrisk/internal/adapters/http/swagger"
	app "github.com/okian/attnrisk/internal/app"
	"github.com/okian/attnrisk/internal/config"
	"github.com/okian/attnrisk/pkg/logger"
	"github.com/okian/attnrisk/pkg/metrics"
)

// HTTP server timeout constants. Writes stay open long enough to stream
// large uploads.
const (
	readTimeout            = 5 * time.Minute
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

// ServeCmd runs the HTTP service.
type ServeCmd struct {
	Addr string `help:"Listen address; overrides the configured addr"`
}

// Run starts the service and blocks until the context is cancelled.
func (c *ServeCmd) Run(env *runtimeEnv) error {
	ctx, cfg, log := env.ctx, env.cfg, env.log
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		log.Error(ctx, "HTTP server failed", logger.Error(serveErr))
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return serveErr
}

// newService configures the analysis service from cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	tc, tr, ax := collaborators(cfg)
	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithCollaborators(tc, tr, ax),
		app.WithPipelineOptions(pipelineOptions(cfg)...),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithUploadDir(cfg.UploadDir),
		app.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		app.WithRetention(cfg.JobRetention),
		app.WithSweepSchedule(cfg.SweepSchedule),
	)
}

// newMux mounts the API and docs routes.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater periodically publishes service gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics copies the service stats into gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if total, ok := stats["totalJobs"].(int); ok {
		metrics.UpdateJobsTracked(total)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
