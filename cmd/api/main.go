package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/doorstep/internal/api/router"
	"github.com/wolfman30/doorstep/internal/app/bootstrap"
	"github.com/wolfman30/doorstep/internal/catalog"
	appconfig "github.com/wolfman30/doorstep/internal/config"
	httpmiddleware "github.com/wolfman30/doorstep/internal/http/middleware"
	"github.com/wolfman30/doorstep/internal/observability/metrics"
	"github.com/wolfman30/doorstep/internal/observability/tracing"
	"github.com/wolfman30/doorstep/internal/sessions"
	"github.com/wolfman30/doorstep/internal/technician"
	"github.com/wolfman30/doorstep/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg := appconfig.Load()

	logger := logging.ForEnv(cfg.Env, cfg.LogLevel)
	logger.Info("starting doorstep API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"booking_service", cfg.BookingServiceURL,
	)

	ctx := context.Background()
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.OTELEnabled,
		ServiceName: "doorstep-api",
		Endpoint:    cfg.OTELEndpoint,
		SampleRatio: cfg.OTELSampleRatio,
	})
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	store, closeStore := bootstrap.BuildSessionStore(ctx, cfg, logger)
	client := bootstrap.BuildBookingClient(cfg, logger)
	metricsHandler, bookingMetrics := setupMetrics()

	manager, err := sessions.NewManager(sessions.Config{
		Store:     store,
		Catalogs:  catalog.NewStaticProvider(),
		Submitter: bootstrap.BuildSubmitter(cfg, client, logger),
		Metrics:   bookingMetrics,
		Logger:    logger,
		Location:  cfg.Location(),
	})
	if err != nil {
		logger.Error("failed to build session manager", "error", err)
		os.Exit(1)
	}

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	sweepDone := make(chan struct{})
	go limiter.Run(sweepDone)

	r := router.New(&router.Config{
		Logger:             logger,
		SessionsHandler:    sessions.NewHandler(manager, logger),
		TechnicianHandler:  technician.NewHandler(technician.NewService(client, logger), logger),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, "doorstep-api"),
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

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	close(sweepDone)
	if err := closeStore(); err != nil {
		logger.Warn("failed to close session store", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("failed to flush traces", "error", err)
	}

	logger.Info("server stopped")
}

func setupMetrics() (http.Handler, *metrics.BookingMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewBookingMetrics(reg)
}
