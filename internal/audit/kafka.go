package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaForwarder publishes audit events to a Kafka topic for downstream
// correlators. Records are keyed by correlation ID so one run's events land
// on one partition and keep their relative order; consumers still sort by
// Seq when reconstructing the trail.
type KafkaForwarder struct {
	client *kgo.Client
	topic  string
}

// NewKafkaForwarder connects to the given brokers. The caller owns Close.
func NewKafkaForwarder(brokers []string, topic string) (*KafkaForwarder, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &KafkaForwarder{client: client, topic: topic}, nil
}

// Append publishes one event synchronously. The Recorder treats failures
// like any other sink failure: logged and retried, never fatal.
func (f *KafkaForwarder) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event %s: %w", event.LogID, err)
	}

	record := &kgo.Record{
		Topic: f.topic,
		Key:   []byte(event.CorrelationID),
		Value: payload,
	}
	if err := f.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event %s: %w", event.LogID, err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (f *KafkaForwarder) Close() {
	f.client.Close()
}
