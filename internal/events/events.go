// Package events publishes domain events to Kafka. Publishing is best-effort:
// services log and continue when the broker is unavailable, so event delivery
// never blocks or fails a user-facing operation.
package events

import (
	"context"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/segmentio/kafka-go"
)

// Topic names for the event streams produced by this service.
const (
	TopicProducts = "product_events"
	TopicOrders   = "order_events"
)

// Event is a flat domain event payload. Values may be strings, integers,
// floats, booleans, or time.Time; anything else is skipped by the encoder.
type Event map[string]any

// Publisher emits domain events. Implementations must be safe for concurrent
// use by multiple goroutines.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
	Close() error
}

// Noop discards all events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, Event) error { return nil }
func (Noop) Close() error                                         { return nil }

// Kafka publishes events to a Kafka cluster.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka creates a publisher writing to the given brokers. Topics are
// auto-created on first write.
func NewKafka(brokers []string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
		},
	}
}

// Publish encodes the event as JSON and writes it to the topic, keyed so that
// events for the same entity land in the same partition.
func (p *Kafka) Publish(ctx context.Context, topic, key string, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return errors.Wrapf(err, "write to %s", topic)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Kafka) Close() error {
	return p.writer.Close()
}

// Encode serializes an event to JSON with deterministic field order.
func Encode(event Event) ([]byte, error) {
	var e jx.Encoder
	e.ObjStart()
	for _, k := range sortedKeys(event) {
		e.FieldStart(k)
		if err := encodeValue(&e, event[k]); err != nil {
			return nil, errors.Wrapf(err, "field %s", k)
		}
	}
	e.ObjEnd()
	return e.Bytes(), nil
}

func encodeValue(e *jx.Encoder, v any) error {
	switch val := v.(type) {
	case nil:
		e.Null()
	case string:
		e.Str(val)
	case bool:
		e.Bool(val)
	case int:
		e.Int(val)
	case int64:
		e.Int64(val)
	case float64:
		e.Float64(val)
	case time.Time:
		e.Str(val.UTC().Format(time.RFC3339))
	default:
		return errors.Errorf("unsupported value type %T", v)
	}
	return nil
}

func sortedKeys(event Event) []string {
	keys := make([]string, 0, len(event))
	for k := range event {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
