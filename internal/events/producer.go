package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/internal/logging"
)

const Topic = "storefront_events"

// Producer publishes JSON domain events. A nil Producer is valid and
// drops everything, so callers never need to branch on configuration.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	if len(brokers) == 0 {
		return nil
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Publish sends one event keyed by the acting user. Failures are logged
// and swallowed: events are best-effort and never fail the request.
func (p *Producer) Publish(ctx context.Context, key string, event map[string]any) {
	if p == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logging.FromContext(ctx).Error("event marshal failed", "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := kafka.Message{Key: []byte(key), Value: data}
	if err := p.writer.WriteMessages(pubCtx, msg); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "error", err, "type", fmt.Sprint(event["type"]))
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
