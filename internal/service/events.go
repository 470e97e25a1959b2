package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/ctroy978/umadex-sub002/internal/middleware"
)

// Debate engine event types published for teacher-facing consumers.
const (
	EventFlagRaised       = "debate.flag.raised"
	EventDebateCompleted  = "debate.debate.completed"
	EventSessionCompleted = "debate.session.completed"
	EventOverrideRedeemed = "debate.override.redeemed"
)

// DebateEvent is the envelope published to NATS when the engine reaches a
// state other systems care about.
type DebateEvent struct {
	Type          string                 `json:"type"`
	SessionID     uint                   `json:"session_id"`
	StudentID     uint                   `json:"student_id"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Source        string                 `json:"source"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

// EventPublisher fans engine events out to interested consumers. Publishing
// is best-effort; failures never block the turn sequence.
type EventPublisher interface {
	Publish(ctx context.Context, event DebateEvent)
}

type natsEventPublisher struct {
	conn    *nats.Conn
	subject string
	nodeID  string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEventPublisher constructs a NATS-backed publisher. A nil connection
// degrades to a no-op so single-node deployments run without a broker.
func NewEventPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) EventPublisher {
	if subject == "" {
		subject = "umadex.debate.events"
	}

	return &natsEventPublisher{
		conn:    conn,
		subject: subject,
		nodeID:  uuid.NewString(),
		logger:  logger.With().Str("component", "event_publisher").Logger(),
		now:     time.Now,
	}
}

func (p *natsEventPublisher) Publish(ctx context.Context, event DebateEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now()
	}
	event.Source = p.nodeID
	if event.CorrelationID == "" {
		// Ties the event back to the HTTP request that caused it.
		event.CorrelationID = middleware.CorrelationIDFromContext(ctx)
	}

	if p.conn == nil {
		p.logger.Debug().Str("type", event.Type).Uint("session_id", event.SessionID).Msg("event publisher disabled, dropping event")
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to marshal debate event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish debate event")
	}
}
