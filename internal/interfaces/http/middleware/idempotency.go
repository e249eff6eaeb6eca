package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets a client make a POST safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value.
const MaxIdempotencyKeyLength = 255

// ErrDuplicateRequest answers a POST whose key was already used within the TTL.
var ErrDuplicateRequest = shared.NewConflictError("DUPLICATE_REQUEST", "Duplicate request")

// Idempotency claims the Idempotency-Key of POST requests in store for ttl.
// A key that is already held is rejected as a conflict. The key is
// released again when the request fails, so only successful creates are
// remembered. A store error lets the request through.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			abortWithError(c, dto.FromError(shared.NewFieldError(IdempotencyKeyHeader,
				fmt.Sprintf("Longer than maximum length %d.", MaxIdempotencyKeyLength))))
			return
		}

		ctx := c.Request.Context()
		log := logger.GetGinLogger(c)
		scoped := c.FullPath() + "|" + key

		claimed, err := store.Claim(ctx, scoped, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable, processing request without key", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			log.Info("Duplicate request rejected", zap.String("idempotency_key", key))
			abortWithError(c, dto.FromError(ErrDuplicateRequest))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
