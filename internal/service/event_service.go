package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Domain event names published to NATS.
const (
	EventEnrollmentCreated = "enrollment.created"
	EventEnrollmentRemoved = "enrollment.removed"
	EventProgressUpdated   = "progress.updated"
	EventTeacherApproved   = "teacher.approved"
	EventTeacherRejected   = "teacher.rejected"
)

// EventPublisher emits domain events for downstream consumers. A nil NATS
// connection disables publishing without touching call sites.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload interface{})
}

type eventPublisher struct {
	conn      *nats.Conn
	subjectNS string
	logger    zerolog.Logger
	tracer    trace.Tracer
}

type eventEnvelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// NewEventPublisher constructs the NATS-backed event publisher.
func NewEventPublisher(conn *nats.Conn, subjectNS string, logger zerolog.Logger) EventPublisher {
	if subjectNS == "" {
		subjectNS = "edubridge"
	}
	return &eventPublisher{
		conn:      conn,
		subjectNS: subjectNS,
		logger:    logger.With().Str("component", "event_publisher").Logger(),
		tracer:    otel.Tracer("github.com/jackma2003/edubridge-api/internal/service/events"),
	}
}

// Publish serialises the payload and sends it on <namespace>.<event>.
// Failures are logged, never surfaced: domain events are best-effort and must
// not fail the request that produced them.
func (p *eventPublisher) Publish(ctx context.Context, event string, payload interface{}) {
	if p.conn == nil {
		return
	}

	_, span := p.tracer.Start(ctx, "events.publish", trace.WithAttributes(
		attribute.String("event.name", event),
	))
	defer span.End()

	body, err := json.Marshal(eventEnvelope{Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		p.logger.Error().Err(err).Str("event", event).Msg("failed to marshal event payload")
		return
	}

	subject := fmt.Sprintf("%s.%s", p.subjectNS, event)
	if err := p.conn.Publish(subject, body); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
