// Package router assembles the chi router, middleware stack and routes.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/hapkiduki/shipping-go/internal/application/port"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/handler"
	"github.com/hapkiduki/shipping-go/internal/interfaces/http/middleware"
)

// Options configures New.
type Options struct {
	Version            string
	Started            time.Time
	Logger             port.Logger
	Shipping           handler.ShippingUsecase
	CORSAllowedOrigins []string
	TrustProxyHeaders  bool
	RateLimit          middleware.RateLimiterConfig
	RequestTimeout     time.Duration
	MaxRequestSize     int64
}

// New builds the HTTP handler of the service.
func New(opts Options) http.Handler {
	r := chi.NewRouter()

	// ============================================================================
	// Middleware stack
	// ============================================================================
	// Order matters! Middleware is executed in the order added.

	// 1. Real IP extraction (for rate limiting and logging), trusted proxies only
	if opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}

	// 2. Request ID generation/propagation
	r.Use(middleware.RequestID)

	// 3. Logging (after Request ID so it's included in logs)
	r.Use(middleware.Logger(opts.Logger))

	// 4. Panic recovery
	r.Use(middleware.Recoverer(opts.Logger))

	// 5. Request timeout
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	// 6. CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-API-Version"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 7. Rate limiting
	r.Use(middleware.RateLimiter(opts.RateLimit))

	// 8. Security headers
	r.Use(middleware.SecureHeaders)

	// 9. API version header
	r.Use(middleware.APIVersion(opts.Version))

	// 10. Body size limit and Content-Type enforcement
	if opts.MaxRequestSize > 0 {
		r.Use(middleware.MaxBodySize(opts.MaxRequestSize))
	}
	r.Use(middleware.ContentTypeJSON)

	// ============================================================================
	// Routes
	// ============================================================================

	health := handler.NewHealthHandler(opts.Version, opts.Started, opts.Shipping)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)

	shippingHandler := handler.NewShippingHandler(opts.Shipping, opts.Logger)
	r.Route("/api/v1/shipping", shippingHandler.Routes)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
