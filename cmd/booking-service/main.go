package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/doorstep/internal/api/router"
	"github.com/wolfman30/doorstep/internal/app/bootstrap"
	"github.com/wolfman30/doorstep/internal/bookingservice"
	appconfig "github.com/wolfman30/doorstep/internal/config"
	httpmiddleware "github.com/wolfman30/doorstep/internal/http/middleware"
	"github.com/wolfman30/doorstep/internal/observability/metrics"
	"github.com/wolfman30/doorstep/internal/observability/tracing"
	"github.com/wolfman30/doorstep/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg := appconfig.Load()

	logger := logging.ForEnv(cfg.Env, cfg.LogLevel)
	logger.Info("starting booking service", "env", cfg.Env, "port", cfg.ServicePort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.OTELEnabled,
		ServiceName: "doorstep-booking-service",
		Endpoint:    cfg.OTELEndpoint,
		SampleRatio: cfg.OTELSampleRatio,
	})
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	var repo bookingservice.Repository = bookingservice.NewInMemoryRepository()
	pool := bootstrap.BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
		repo = bookingservice.NewPostgresRepository(pool)
		logger.Info("using postgres repository")
	} else {
		logger.Warn("DATABASE_URL not set or unreachable; using in-memory repository")
	}

	pipeline := bootstrap.BuildEventPipeline(cfg, pool, logger)
	if pipeline.Deliverer != nil {
		go pipeline.Deliverer.Start(ctx)
	}

	reg := prometheus.NewRegistry()
	svc := bookingservice.NewService(repo, logger,
		bookingservice.WithPublisher(pipeline.Publisher),
		bookingservice.WithMetrics(metrics.NewAppointmentMetrics(reg)),
		bookingservice.WithSlotCapacity(cfg.SlotCapacity),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.ServicePort,
		Handler:      otelhttp.NewHandler(newRouter(svc, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger), "doorstep-booking-service"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down booking service...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := pipeline.Close(); err != nil {
		logger.Warn("failed to close event publisher", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("failed to flush traces", "error", err)
	}
	logger.Info("booking service stopped")
}

func newRouter(svc *bookingservice.Service, metricsHandler http.Handler, logger *logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(logger))

	r.Get("/health", router.Health)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}
	r.Mount("/api", bookingservice.NewHandler(svc, logger).Routes())
	return r
}
