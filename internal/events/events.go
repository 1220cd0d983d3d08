package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"printkit/internal/logger"
)

type Type string

// Notifications emitted after something changed.
const (
	ProductCreated     Type = "product.created"
	ProductPublished   Type = "product.published"
	TemplateGenerated  Type = "template.generated"
	TemplatesGenerated Type = "templates.generated"
	ImageUploaded      Type = "image.uploaded"
)

// Requests consumed by the worker.
const (
	TemplateGenerate     Type = "template.generate"
	TemplatesGenerateAll Type = "templates.generate_all"
	ProductCreate        Type = "product.create"
)

type Event struct {
	ID        string                 `json:"id"`
	Type      Type                   `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

func New(t Type, data map[string]interface{}) Event {
	if data == nil {
		data = map[string]interface{}{}
	}
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Decode parses a message value into an event.
func Decode(value []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		return Event{}, fmt.Errorf("failed to parse event: %w", err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event has no type")
	}
	if event.Data == nil {
		event.Data = map[string]interface{}{}
	}
	return event, nil
}

type Publisher interface {
	Publish(ctx context.Context, t Type, data map[string]interface{}) error
	Close() error
}

// KafkaPublisher writes events as JSON messages keyed by event type.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, t Type, data map[string]interface{}) error {
	event := New(t, data)
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(t), Value: value}); err != nil {
		p.logger.Error("Failed to publish %s event: %v", t, err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	p.logger.Debug("Published %s event %s", t, event.ID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Type, map[string]interface{}) error { return nil }

func (Nop) Close() error { return nil }

// NewPublisher returns a Kafka publisher, or Nop when brokers is empty.
func NewPublisher(brokers []string, topic string, logger *logger.Logger) Publisher {
	if len(brokers) == 0 {
		logger.Debug("No Kafka brokers configured, events disabled")
		return Nop{}
	}
	return NewKafkaPublisher(brokers, topic, logger)
}

// Memory keeps published events in memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, t Type, data map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, New(t, data))
	return nil
}

func (m *Memory) Close() error { return nil }

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Types lists the published event types in order.
func (m *Memory) Types() []Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]Type, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}
