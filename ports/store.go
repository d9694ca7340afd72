package ports

import (
	"context"
	"time"

	"github.com/layer-3/cookiecheck/core"
)

// OutcomeStore caches verification outcomes under an opaque key
type OutcomeStore interface {
	Get(ctx context.Context, key string) (core.Outcome, bool, error)
	Put(ctx context.Context, key string, outcome core.Outcome, ttl time.Duration) error
}
