package events

import (
	"context"

	"machina/internal/adapters/kafka"
	"machina/internal/domain/efficiency"
	"machina/pkg/logger"
)

// Publisher publishes prediction events to Kafka for downstream consumers
// (dashboards, drift monitoring, offline evaluation).
type Publisher struct {
	producer *kafka.Producer
	topic    string
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer, topic string) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		log:      logger.Get().With("component", "event_publisher"),
	}
}

// PublishPrediction publishes one finished prediction. Events are keyed by
// request id; payload is the flattened prediction record as JSON.
func (p *Publisher) PublishPrediction(ctx context.Context, record *efficiency.PredictionRecord) error {
	return p.producer.Publish(ctx, p.topic, record.RequestID, record)
}

// Close closes the underlying producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
