package repository

import (
	"context"

	"CoinLake/internal/domain/models"
	drepo "CoinLake/internal/domain/repository"
	pkgkafka "CoinLake/pkg/kafka"
)

// KafkaPublisher mirrors flushed tick batches to a topic, keyed by product
// so per-product ordering survives partitioning.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka batch publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) drepo.BatchPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, batch *models.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(batch.Ticks))
	for i, t := range batch.Ticks {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(t.ProductID),
			Value: t.Payload,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
