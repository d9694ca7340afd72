package audit

import (
	"context"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

// LogSink writes audit events to the structured log
type LogSink struct {
	log *zap.Logger
}

// NewLogSink creates a new log sink
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log.Named("audit")}
}

var _ ports.AuditSink = (*LogSink)(nil)

// Record logs an audit event
func (s *LogSink) Record(ctx context.Context, event core.AuditEvent) error {
	s.log.Info("AUDIT_EVENT",
		zap.String("correlation_id", event.CorrelationID),
		zap.String("outcome", string(event.OutcomeKind)),
		zap.String("error_kind", string(event.ErrorKind)),
		zap.String("source", string(event.Source)),
		zap.Int64("elapsed_ms", event.ElapsedMs),
		zap.Time("timestamp", event.Timestamp),
	)
	return nil
}

// Nop discards audit events
type Nop struct{}

// Record does nothing
func (Nop) Record(context.Context, core.AuditEvent) error { return nil }
