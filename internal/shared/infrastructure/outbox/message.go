package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peksity/police-chief-bot-sub002/internal/shared/domain"
	"github.com/peksity/police-chief-bot-sub002/internal/shared/infrastructure/eventbus"
)

// Message is a domain event waiting to be published. Payload is the full
// eventbus envelope, ready for the wire.
type Message struct {
	ID             int64
	EventID        uuid.UUID
	AggregateType  string
	AggregateID    uuid.UUID
	RoutingKey     string
	Payload        []byte
	Metadata       domain.EventMetadata
	CreatedAt      time.Time
	PublishedAt    *time.Time
	NextRetryAt    *time.Time
	RetryCount     int
	LastError      string
	DeadLetteredAt *time.Time
}

// NewMessage encodes event into an outbox message.
func NewMessage(event domain.DomainEvent) (*Message, error) {
	payload, err := eventbus.Encode(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      event.Metadata(),
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// NewMessages encodes a batch of events.
func NewMessages(events []domain.DomainEvent) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event)
		if err != nil {
			return nil, fmt.Errorf("encode outbox message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// IsPublished reports whether the message has been delivered.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

func (m *Message) metadataJSON() (string, error) {
	b, err := json.Marshal(m.Metadata)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
