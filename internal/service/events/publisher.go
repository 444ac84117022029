package events

import (
	"context"

	"MarketBrief/internal/domain/models"
	domsvc "MarketBrief/internal/domain/service"
	xkafka "MarketBrief/pkg/kafka"
	xlogger "MarketBrief/pkg/logger"
)

// Publisher emits analysis run events to a Kafka topic. A nil Publisher
// is a valid no-op, so callers never branch on whether Kafka is enabled.
type Publisher struct {
	producer *xkafka.Producer
	topic    string
}

func New(producer *xkafka.Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// PublishRun emits one run event keyed by trigger source.
func (p *Publisher) PublishRun(ctx context.Context, event *models.RunEvent) error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(event.Trigger), event)
}

// PublishMessage satisfies the log collector sink contract.
func (p *Publisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *Publisher) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

var (
	_ domsvc.RunPublisher = (*Publisher)(nil)
	_ xlogger.Publisher   = (*Publisher)(nil)
)
