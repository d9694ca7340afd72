package ports

import (
	"context"

	"github.com/layer-3/cookiecheck/core"
)

// AuditSink records completed verifications. Writes may arrive concurrently and out of order.
type AuditSink interface {
	Record(ctx context.Context, event core.AuditEvent) error
}
