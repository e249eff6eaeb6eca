package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// DefaultMaxBodySize caps request bodies when EngineOptions leaves it unset.
const DefaultMaxBodySize int64 = 1 << 20

// EngineOptions configures the middleware stack of NewEngine.
type EngineOptions struct {
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Tracing        middleware.TracingConfig
	MeterProvider  *telemetry.MeterProvider

	// RateLimiter limits requests per client IP when set.
	RateLimiter *middleware.RateLimiter

	// IdempotencyStore enables Idempotency-Key handling on POST when set.
	IdempotencyStore cache.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// NewEngine builds the gin engine with the middleware stack applied in order:
//
//  1. RequestID - generate/propagate X-Request-ID
//  2. Logger - request-scoped zap logger and access log
//  3. Recovery - turn panics into a 500 error body
//  4. Tracing - otelgin server span, then span status from the response
//  5. HTTPMetrics - request count, latency and sizes
//  6. CORS
//  7. RateLimit - per client IP, when a limiter is configured
//  8. BodyLimit
//  9. Idempotency - POST only, when a store is configured
//
// Unknown paths answer 404 and known paths with the wrong method 405, both
// in the error body shape.
func NewEngine(opts EngineOptions) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log, renderPanic))
	engine.Use(middleware.Tracing(opts.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: opts.MeterProvider,
		Logger:        log,
	}))
	engine.Use(middleware.CORSWithConfig(opts.CORS))
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}
	engine.Use(middleware.BodyLimit(maxBody))
	if opts.IdempotencyStore != nil {
		engine.Use(middleware.Idempotency(opts.IdempotencyStore, opts.IdempotencyTTL))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound,
			"The requested URL was not found on the server."))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponse(http.StatusMethodNotAllowed,
			"The method is not allowed for the requested URL."))
	})

	return engine
}

func renderPanic(c *gin.Context, recovered any) {
	body := dto.FromError(fmt.Errorf("panic: %v", recovered))
	c.JSON(body.StatusCode, body)
}
