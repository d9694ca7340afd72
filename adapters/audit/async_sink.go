package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/internal/metrics"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

// ErrSinkClosed is returned by Record after Close
var ErrSinkClosed = errors.New("audit sink closed")

// AsyncSink buffers events and forwards them to another sink from a single
// worker, so Record never blocks the caller. Events are dropped when the
// buffer is full.
type AsyncSink struct {
	next ports.AuditSink
	log  *zap.Logger

	mu     sync.RWMutex
	closed bool
	events chan core.AuditEvent
	done   chan struct{}
}

// NewAsyncSink starts the worker. Call Close to drain and stop it.
func NewAsyncSink(next ports.AuditSink, buffer int, log *zap.Logger) *AsyncSink {
	if buffer < 1 {
		buffer = 1
	}
	s := &AsyncSink{
		next:   next,
		log:    log,
		events: make(chan core.AuditEvent, buffer),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

var _ ports.AuditSink = (*AsyncSink)(nil)

// Record enqueues an event
func (s *AsyncSink) Record(ctx context.Context, event core.AuditEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSinkClosed
	}

	select {
	case s.events <- event:
		return nil
	default:
		metrics.AuditDropped.Inc()
		return fmt.Errorf("audit buffer full, dropped event %s", event.CorrelationID)
	}
}

// Close stops accepting events and waits for the buffer to drain
func (s *AsyncSink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for event := range s.events {
		s.forward(event)
	}
}

func (s *AsyncSink) forward(event core.AuditEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("audit sink panicked", zap.Any("panic", r), zap.String("correlation_id", event.CorrelationID))
		}
	}()

	if err := s.next.Record(context.Background(), event); err != nil {
		s.log.Warn("failed to record audit event", zap.Error(err), zap.String("correlation_id", event.CorrelationID))
	}
}
