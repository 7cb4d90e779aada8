package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/wolfman30/doorstep/pkg/logging"
)

// Publisher emits events to a downstream transport.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to one topic, keyed by aggregate id, with
// event_id/event_type and W3C trace headers.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logging.Logger
}

// NewKafkaPublisher builds a hash-balanced writer for topic.
func NewKafkaPublisher(brokers []string, topic string, logger *logging.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisherWithWriter(w, topic, logger)
}

func newKafkaPublisherWithWriter(w messageWriter, topic string, logger *logging.Logger) *KafkaPublisher {
	if w == nil {
		panic("events: kafka writer required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &KafkaPublisher{writer: w, topic: topic, logger: logger}
}

// Publish writes one message.
func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(env.Key),
		Value: env.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(env.ID)},
			{Key: "event_type", Value: []byte(env.Type)},
		},
	}
	msg.Headers = InjectTraceHeaders(ctx, msg.Headers)
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: kafka write %s: %w", env.Type, err)
	}
	p.logger.Debug("event published", "event_id", env.ID, "type", env.Type, "topic", p.topic)
	return nil
}

// Handle delivers an outbox entry, so the publisher can drain an outbox.
func (p *KafkaPublisher) Handle(ctx context.Context, entry OutboxEntry) error {
	return p.Publish(ctx, Envelope{
		ID:      entry.ID.String(),
		Type:    entry.Type,
		Key:     entry.AggregateID,
		Payload: entry.Payload,
	})
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// HeaderValue returns the value of key, or "".
func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
