// Package kafka connects the workflow to the event bus: a synchronous
// producer used by the outbox relay, and a consumer group that feeds bus
// events back into command handlers.
package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// SaramaEventPublisher implements ports.EventPublisher on a Sarama
// synchronous producer. Events of one aggregate share a partition key, so
// per-aggregate ordering survives the bus.
type SaramaEventPublisher struct {
	producer sarama.SyncProducer
}

// NewSaramaEventPublisher creates a publisher connected to the given brokers.
// The producer waits for acknowledgment from all in-sync replicas; the relay
// depends on Publish failing loudly rather than buffering.
func NewSaramaEventPublisher(brokers []string) (*SaramaEventPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}

	return &SaramaEventPublisher{producer: producer}, nil
}

// Publish sends one message to the topic, keyed by aggregate id.
func (p *SaramaEventPublisher) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	return err
}

// Close shuts down the underlying producer.
func (p *SaramaEventPublisher) Close() error {
	return p.producer.Close()
}
