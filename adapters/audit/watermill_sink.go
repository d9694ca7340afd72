package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/cookiecheck/core"
	"github.com/layer-3/cookiecheck/ports"
)

// DefaultTopic is the topic audit events are published to
const DefaultTopic = "cookiecheck.audit"

// WatermillSink implements the AuditSink interface using Watermill
type WatermillSink struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillSink creates a new Watermill sink
func NewWatermillSink(publisher message.Publisher, topic string) *WatermillSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &WatermillSink{
		publisher: publisher,
		topic:     topic,
	}
}

var _ ports.AuditSink = (*WatermillSink)(nil)

// Record publishes an audit event
func (s *WatermillSink) Record(ctx context.Context, event core.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("correlation_id", event.CorrelationID)
	msg.Metadata.Set("outcome", string(event.OutcomeKind))
	msg.SetContext(ctx)

	if err := s.publisher.Publish(s.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
