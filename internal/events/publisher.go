// Package events publishes order domain events after their transaction has
// committed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

const (
	BatchTimeout = 10 * time.Millisecond
	BatchSize    = 100
	MaxAttempts  = 3
	// PublishTimeout bounds one Publish call, retries included. Publishing
	// runs on the request path after commit.
	PublishTimeout = 2 * time.Second
)

type Event struct {
	Type    string
	Key     string
	Payload any
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Kafka struct {
	w       MessageWriter
	timeout time.Duration
}

func NewKafka(brokers []string, topic string) *Kafka {
	return NewKafkaWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           BatchTimeout,
		BatchSize:              BatchSize,
		MaxAttempts:            MaxAttempts,
		WriteTimeout:           PublishTimeout,
		AllowAutoTopicCreation: true,
	})
}

func NewKafkaWithWriter(w MessageWriter) *Kafka { return &Kafka{w: w, timeout: PublishTimeout} }

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publish writes e keyed by e.Key, so every event of one order lands on the
// same partition. The current trace context travels in the headers.
func (k *Kafka) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(envelope{Type: e.Type, OccurredAt: time.Now().UTC(), Data: e.Payload})
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{{Key: "event-type", Value: []byte(e.Type)}}
	for key, v := range carrier {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(v)})
	}

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()
	return k.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(e.Key),
		Value:   body,
		Headers: headers,
	})
}

func (k *Kafka) Close() error { return k.w.Close() }
