package ports

import (
	"context"

	"github.com/layer-3/cookiecheck/core"
)

// Verifier decides the status of a cookie pair.
// Implementations must return once ctx is done.
type Verifier interface {
	Verify(ctx context.Context, req core.Request) (core.Outcome, error)
}
