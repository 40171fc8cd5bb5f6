package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/segmentio/kafka-go"
)

// Event is one message for Kafka. Value is sent as JSON. An empty Key is
// taken from Value when it implements Keyed.
type Event struct {
	Key   string
	Value any
}

// Keyed values pick their own partition key, so related events (all
// searches for one query, all reload requests) stay ordered on one
// partition.
type Keyed interface {
	PartitionKey() string
}

func (e Event) key() string {
	if e.Key != "" {
		return e.Key
	}
	if k, ok := e.Value.(Keyed); ok {
		return k.PartitionKey()
	}
	return ""
}

var jsonHeader = kafka.Header{Key: "content-type", Value: []byte("application/json")}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON events to one topic.
type Producer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewProducer creates a Producer for topic. Messages are hashed to
// partitions by key and acknowledged by every in-sync replica.
func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}, topic)
}

func newProducer(w messageWriter, topic string) *Producer {
	return &Producer{
		writer: w,
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	return p.PublishBatch(ctx, []Event{event})
}

// PublishBatch writes events in one call. Nothing is written if any value
// fails to encode.
func (p *Producer) PublishBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(event.Value)
		if err != nil {
			return fmt.Errorf("encoding %T event: %w", event.Value, err)
		}
		messages = append(messages, kafka.Message{
			Key:     []byte(event.key()),
			Value:   value,
			Headers: []kafka.Header{jsonHeader},
		})
	}
	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.Error("failed to publish",
			"count", len(messages),
			"first_key", string(messages[0].Key),
			"error", err,
		)
		return fmt.Errorf("publishing %d events to kafka: %w", len(messages), err)
	}
	p.logger.Debug("published", "count", len(messages), "first_key", string(messages[0].Key))
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
