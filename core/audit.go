package core

import "time"

// Source names the strategy that produced an outcome
type Source string

const (
	SourceLocal      Source = "local"
	SourceRemote     Source = "remote"
	SourceCache      Source = "cache"
	SourceDisabled   Source = "disabled"
	SourceValidation Source = "validation"
)

// AuditEvent records one completed verification. It never carries cookie values.
type AuditEvent struct {
	CorrelationID string    `json:"correlation_id"`
	OutcomeKind   Status    `json:"outcome"`
	ErrorKind     ErrorKind `json:"error_kind,omitempty"`
	Source        Source    `json:"source"`
	ElapsedMs     int64     `json:"elapsed_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewAuditEvent builds the audit record for an outcome
func NewAuditEvent(correlationID string, o Outcome, src Source, elapsed time.Duration) AuditEvent {
	return AuditEvent{
		CorrelationID: correlationID,
		OutcomeKind:   o.Status,
		ErrorKind:     o.Kind,
		Source:        src,
		ElapsedMs:     elapsed.Milliseconds(),
		Timestamp:     time.Now().UTC(),
	}
}
