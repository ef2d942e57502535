// Package kafka ships audit events to a Kafka (or Redpanda) topic so outside
// listeners can follow mint, purchase, and bind activity without access to
// the registry itself.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"meterai/internal/audit"
)

// Publisher implements audit.Store by producing one JSON record per event.
// Records are keyed by the aggregate token id so per-token history stays in
// partition order.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// New dials the brokers and returns a publisher for topic. Close releases
// the client.
func New(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// NewWithClient wraps an existing client; the caller manages its lifecycle.
// Used by the integration tests.
func NewWithClient(client *kgo.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	key := event.ID.String()
	if len(event.TokenIDs) == 1 {
		key = event.TokenIDs[0].String()
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(key),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
