package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/internal/metrics"
	"github.com/layer-3/cookiecheck/ports"
	"go.uber.org/zap"
)

const auditTimeout = 2 * time.Second

var errCancelled = errors.New("request cancelled")

// VerificationService runs one verification per call: validate, apply the
// attempt deadline, delegate to the strategy, then audit exactly once.
type VerificationService struct {
	verifier ports.Verifier
	source   core.Source
	audit    ports.AuditSink
	log      *zap.Logger

	timeout time.Duration
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	verifier ports.Verifier,
	source core.Source,
	audit ports.AuditSink,
	log *zap.Logger,
	timeout time.Duration,
) *VerificationService {
	return &VerificationService{
		verifier: verifier,
		source:   source,
		audit:    audit,
		log:      log,
		timeout:  timeout,
	}
}

// Verify returns a definitive outcome for the request. It never returns an
// error; failures are reported as error outcomes.
func (s *VerificationService) Verify(ctx context.Context, req core.Request) core.Outcome {
	start := time.Now()
	if req.CorrelationID == "" {
		req.CorrelationID = uuid.NewString()
	}

	outcome := s.verify(ctx, req)
	elapsed := time.Since(start)

	metrics.Verifications.WithLabelValues(string(outcome.Status), string(outcome.Kind)).Inc()
	metrics.VerificationDuration.WithLabelValues(string(outcome.Source)).Observe(elapsed.Seconds())

	s.log.Info("verification finished",
		zap.String("correlation_id", req.CorrelationID),
		zap.String("status", string(outcome.Status)),
		zap.String("kind", string(outcome.Kind)),
		zap.String("source", string(outcome.Source)),
		zap.Duration("elapsed", elapsed),
	)

	s.record(ctx, core.NewAuditEvent(req.CorrelationID, outcome, outcome.Source, elapsed))
	return outcome
}

func (s *VerificationService) verify(ctx context.Context, req core.Request) core.Outcome {
	if err := req.Cookies.Validate(); err != nil {
		return core.TransientError(err).From(core.SourceValidation)
	}
	req.Cookies = req.Cookies.Normalize()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outcome, err := s.callStrategy(attemptCtx, req)
	if err != nil {
		switch {
		case errors.Is(attemptCtx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
			err = core.ErrTimeout
		case ctx.Err() != nil, errors.Is(err, context.Canceled):
			err = errCancelled
		}
		outcome = core.TransientError(err)
	}

	if outcome.Source == "" {
		outcome = outcome.From(s.source)
	}
	return outcome
}

func (s *VerificationService) callStrategy(ctx context.Context, req core.Request) (outcome core.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("verifier panicked", zap.Any("panic", r), zap.String("correlation_id", req.CorrelationID))
			outcome, err = core.Outcome{}, errors.New("internal error")
		}
	}()
	return s.verifier.Verify(ctx, req)
}

// record hands the event to the audit sink. Sink failures never change the outcome.
func (s *VerificationService) record(ctx context.Context, event core.AuditEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("audit sink panicked", zap.Any("panic", r), zap.String("correlation_id", event.CorrelationID))
		}
	}()

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	if err := s.audit.Record(auditCtx, event); err != nil {
		s.log.Warn("failed to record audit event", zap.Error(err), zap.String("correlation_id", event.CorrelationID))
	}
}
