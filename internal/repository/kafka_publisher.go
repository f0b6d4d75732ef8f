package repository

import (
	"context"

	"GhostRegime/internal/domain/models"
	domrepo "GhostRegime/internal/domain/repository"
	pkgkafka "GhostRegime/pkg/kafka"
)

// Publisher is the part of pkg/kafka.Producer the snapshot publisher uses.
type Publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}, headers map[string]string) error
	Close() error
}

var _ Publisher = (*pkgkafka.Producer)(nil)

// KafkaSnapshotPublisher emits committed snapshots keyed by date.
type KafkaSnapshotPublisher struct {
	producer Publisher
	topic    string
}

func NewKafkaSnapshotPublisher(producer Publisher, topic string) domrepo.SnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, e *models.SnapshotEvent) error {
	headers := map[string]string{
		"event":  e.Type,
		"run_id": e.RunID,
	}
	return p.producer.Publish(ctx, p.topic, []byte(e.Date.String()), e, headers)
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops events. Used when kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, e *models.SnapshotEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
