package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"assetfin-backend/internal/infrastructure/logging"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventScheduleRegenerated = "schedule.regenerated"
	EventValuationRefreshed  = "valuation.refreshed"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OwnerID    string    `json:"owner_id,omitempty"`
	SubjectID  string    `json:"subject_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Writer is the part of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w   Writer
	log logging.Logger
	now func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string, log logging.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return NewKafkaPublisherWithWriter(w, log)
}

func NewKafkaPublisherWithWriter(w Writer, log logging.Logger) *KafkaPublisher {
	if log == nil {
		log = logging.NewNop()
	}
	return &KafkaPublisher{w: w, log: log, now: time.Now}
}

// Publish keys the message by owner so one owner's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = p.now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("messaging: encode %s: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(e.OwnerID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("event publish failed", logging.String("type", e.Type), logging.String("id", e.ID), logging.Err(err))
		return fmt.Errorf("messaging: publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// NopPublisher drops every event; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
