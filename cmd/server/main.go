package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/currency-rate-widget/internal/application/service"
	"github.com/damon-houk/currency-rate-widget/internal/application/widget"
	"github.com/damon-houk/currency-rate-widget/internal/config"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/api"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/cache"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/handler"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-rate-widget/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.MustLoad()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("Unknown log level, using INFO", map[string]interface{}{
			"log_level": cfg.LogLevel,
		})
	}

	log := logger.NewJSONLogger(os.Stdout, level).WithField("env", cfg.Env)
	logger.SetDefaultLogger(log)

	log.Info("Starting currency rate widget service", map[string]interface{}{
		"addr":             cfg.Addr,
		"rate_api":         cfg.URL,
		"cache_expiration": cfg.Expiration.String(),
		"poll_interval":    cfg.PollInterval.String(),
		"currencies":       cfg.Currencies,
	})

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rateMetrics := metrics.NewRateMetrics(registry)

	// Rate pipeline
	provider := api.NewExchangeRateAPIClient(cfg.URL, &http.Client{Timeout: cfg.Timeout}, log.WithField("component", "rate_api"))
	fetcher := service.NewFallbackRateFetcher(provider, rateMetrics, log)

	rateCache := cache.NewExchangeRateCache()
	rateCache.SetExpiration(cfg.Expiration)

	rateService := service.NewRateService(fetcher, rateCache, rateMetrics, log)
	conversionService := service.NewConversionService(rateService, rateMetrics, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := widget.NewPoller(rateService, cfg.PollInterval, cfg.Currencies, log.WithField("component", "widget"))
	poller.Start(ctx)
	defer poller.Stop()

	router := handler.NewRouter(
		handler.NewRateHandler(rateService, poller, log),
		handler.NewConversionHandler(conversionService, log),
		registry,
		log,
	)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": cfg.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("Server failed", map[string]interface{}{"error": err.Error()})
		}
	case <-ctx.Done():
		log.Info("Shutting down", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
