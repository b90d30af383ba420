// Package main is the entry point for the shipping quote service.
// It prices carts per delivery zone and speed and estimates delivery dates
// for the checkout.
//
// 12-Factor App compliance:
//   - III. Config: Configuration via environment variables
//   - VI. Processes: Stateless processes
//   - VII. Port Binding: Self-contained HTTP server
//   - IX. Disposability: Graceful shutdown
//   - XI. Logs: Structured logging to stdout
//
// Usage:
//
//	go run ./cmd/shipping-api
//
// Environment Variables:
//
//	SHIP_ENVIRONMENT - Deployment environment (development, staging, production)
//	SHIP_SERVER_PORT - HTTP server port (default: 8080)
//	SHIP_CONFIG_FILE - Optional YAML file with rate table overrides
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hapkiduki/shipping-go/internal/application/port"
	"github.com/hapkiduki/shipping-go/internal/application/usecase"
	"github.com/hapkiduki/shipping-go/internal/domain/shipping"
	"github.com/hapkiduki/shipping-go/internal/infrastructure/config"
	"github.com/hapkiduki/shipping-go/internal/infrastructure/persistance/memory"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/middleware"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/router"
	"github.com/hapkiduki/shipping-go/pkg/logger"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	startTime := time.Now()

	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log := logger.MustNew(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.App.Environment == "development",
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting Shipping Service",
		"version", version,
		"environment", cfg.App.Environment,
	)

	// Create context that listens for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create a logger adapter that implements port.Logger
	logAdapter := &loggerAdapter{log}

	// ============================================================================
	// Domain wiring
	// ============================================================================

	rates, err := memory.NewRateTableRepositoryFromConfig(cfg.Shipping)
	if err != nil {
		log.Fatal("Invalid rate table", "error", err)
	}
	if table, err := rates.Current(ctx); err == nil {
		for _, city := range table.DuplicateCities() {
			log.Warn("City listed in more than one zone, first match wins", "city", city)
		}
		log.Info("Rate table loaded", "zones", len(table.Zones()), "speeds", len(table.Speeds()))
	}

	loc, err := cfg.Shipping.Location()
	if err != nil {
		log.Fatal("Invalid timezone", "timezone", cfg.Shipping.Timezone, "error", err)
	}

	var calcOpts []shipping.Option
	if cfg.Shipping.NaturalDescriptions {
		calcOpts = append(calcOpts, shipping.WithDescriptionStyle(shipping.DescriptionNatural))
	}

	svc, err := usecase.NewShippingService(usecase.ShippingServiceDeps{
		Rates:             rates,
		Estimator:         shipping.NewDateEstimator(time.Now, loc),
		Logger:            &loggerAdapter{log.Named("shipping")},
		DefaultLocale:     cfg.Shipping.DefaultLocale,
		CalculatorOptions: calcOpts,
	})
	if err != nil {
		log.Fatal("Failed to build shipping service", "error", err)
	}

	rateLimit := middleware.DefaultRateLimiterConfig()
	rateLimit.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
	rateLimit.Burst = cfg.RateLimit.Burst
	if cfg.RateLimit.IdleTTL > 0 {
		rateLimit.IdleTTL = cfg.RateLimit.IdleTTL
	}

	handler := router.New(router.Options{
		Version:            version,
		Started:            startTime,
		Logger:             logAdapter,
		Shipping:           svc,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		TrustProxyHeaders:  cfg.Server.TrustProxyHeaders,
		RateLimit:          rateLimit,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
	})

	// ============================================================================
	// HTTP server
	// ============================================================================

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Info("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	log.Info("Server shutdown complete")
}

// ============================================================================
// Adapters to implement port interfaces
// ============================================================================

// loggerAdapter adapts the logger.Logger to the port.Logger interface.
type loggerAdapter struct {
	*logger.Logger
}

// With implements port.Logger.
func (l *loggerAdapter) With(keysAndValues ...any) port.Logger {
	return &loggerAdapter{l.Logger.With(keysAndValues...)}
}

// WithContext implements port.Logger.
func (l *loggerAdapter) WithContext(ctx context.Context) port.Logger {
	return &loggerAdapter{l.Logger.WithContext(ctx)}
}
