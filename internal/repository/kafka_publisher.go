package repository

import (
	"context"

	"CryptoBrain/internal/domain/models"
	domrepo "CryptoBrain/internal/domain/repository"
)

var (
	_ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)
	_ domrepo.EventPublisher = NopPublisher{}
)

// Producer is the part of pkg/kafka.Producer the publisher uses.
type Producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

type EventTopics struct {
	Patterns   string
	Confluence string
}

// KafkaEventPublisher keys every event by symbol so one symbol's events stay ordered.
type KafkaEventPublisher struct {
	producer Producer
	topics   EventTopics
}

func NewKafkaEventPublisher(p Producer, topics EventTopics) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, topics: topics}
}

func (k *KafkaEventPublisher) PublishPatterns(ctx context.Context, result *models.MiningResult) error {
	if result == nil || k.topics.Patterns == "" {
		return nil
	}
	return k.producer.Publish(ctx, k.topics.Patterns, []byte(result.Symbol), result)
}

func (k *KafkaEventPublisher) PublishConfluence(ctx context.Context, a *models.MultiTimeframeAnalysis) error {
	if a == nil || k.topics.Confluence == "" {
		return nil
	}
	return k.producer.Publish(ctx, k.topics.Confluence, []byte(a.Symbol), a)
}

func (k *KafkaEventPublisher) Close() error { return k.producer.Close() }

// NopPublisher drops events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishPatterns(context.Context, *models.MiningResult) error { return nil }

func (NopPublisher) PublishConfluence(context.Context, *models.MultiTimeframeAnalysis) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
