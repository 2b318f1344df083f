package producer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"homehold/internal/audit/domain"
)

// KafkaProducer implements Producer using segmentio/kafka-go.
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer creates a Kafka producer writing audit events to topic.
// Returns (nil, nil) when brokers or topic are unset, so callers can wire it
// unconditionally. Call Close when shutting down.
func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	if len(brokers) == 0 || topic == "" {
		return nil, nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaProducer{writer: writer, topic: topic}, nil
}

// Emit serializes the event as JSON and writes it to the topic, bounded by a
// short timeout so a slow broker cannot stall callers indefinitely.
func (p *KafkaProducer) Emit(ctx context.Context, e *domain.Event) error {
	if p == nil || p.writer == nil || e == nil {
		return nil
	}
	payload, err := MarshalEvent(e)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.writer.WriteMessages(writeCtx, kafka.Message{Value: payload})
}

// Close closes the Kafka writer. Safe to call multiple times.
func (p *KafkaProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
