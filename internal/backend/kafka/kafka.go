// Package kafka writes event records to a Kafka topic for downstream
// delivery workers (see cmd/worker).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"nbpulse/internal/event"
)

// Sink is a backend.Backend producing JSON-encoded records to one topic.
type Sink struct {
	writer *kafka.Writer
}

// New creates a Kafka sink writing to topic on the given brokers. Call Close
// when shutting down.
func New(brokers []string, topic string) (*Sink, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, fmt.Errorf("kafka: brokers and topic are required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Sink{writer: writer}, nil
}

// Track serializes the record as JSON and writes it to the topic, keyed by
// identity so one machine's events stay ordered within a partition. A short
// timeout keeps a slow broker from holding the delivery goroutine.
func (s *Sink) Track(ctx context.Context, rec *event.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("kafka: marshal record: %w", err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(rec.Identity),
		Value: payload,
	})
}

// Close closes the Kafka writer. Safe to call multiple times.
func (s *Sink) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
