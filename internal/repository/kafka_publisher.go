package repository

import (
	"context"

	domrepo "StockSage/internal/domain/repository"
	pkgkafka "StockSage/pkg/kafka"
)

// KafkaPublisher implements EventPublisher on a Kafka topic. Analysis
// results are published best-effort; a broker outage must never fail
// the request that produced the result.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

var _ domrepo.EventPublisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) Publish(ctx context.Context, key string, payload interface{}) error {
	return p.producer.Publish(ctx, p.topic, []byte(key), payload)
}

// PublishMessage sends payload to an arbitrary topic on the same
// producer. It satisfies the log collector's publisher so aggregated
// logs ride the existing Kafka connection.
func (p *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
