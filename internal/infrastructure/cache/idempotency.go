package cache

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied idempotency keys for a TTL.
// Implementations must make Claim atomic: of several concurrent claims for
// the same key exactly one succeeds.
type IdempotencyStore interface {
	// Claim records key and reports true if it was not already held.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so a failed request can be retried with it.
	Release(ctx context.Context, key string) error
	Close() error
}
