package ports

import (
	"context"

	"github.com/layer-3/cookiecheck/core"
)

// Browser hands out isolated browsing contexts seeded with a cookie pair
type Browser interface {
	Acquire(ctx context.Context, cookies core.CookiePair) (BrowserContext, error)
}

// BrowserContext is exclusively owned by one attempt.
// Close releases it and is safe to call more than once.
type BrowserContext interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (*core.PageState, error)
	Close() error
}
