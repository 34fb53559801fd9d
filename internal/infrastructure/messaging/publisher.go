// Package messaging moves domain events over RabbitMQ.
package messaging

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/application"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/event"
)

// UserEventsBinding routes every user event to the events queue.
const UserEventsBinding = "user.#"

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

// EventPublisher publishes each event as a JSON envelope routed by its name.
type EventPublisher struct {
	pub    JSONPublisher
	logger *logrus.Logger
}

var _ application.EventPublishing = (*EventPublisher)(nil)

func NewEventPublisher(pub JSONPublisher, logger *logrus.Logger) *EventPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EventPublisher{pub: pub, logger: logger}
}

// Publish sends events in order and stops at the first failure.
func (p *EventPublisher) Publish(ctx context.Context, events []event.DomainEvent) error {
	for _, ev := range events {
		if err := p.pub.PublishJSON(ctx, ev.Name(), ev); err != nil {
			return fmt.Errorf("publish %s %s: %w", ev.Name(), ev.ID(), err)
		}
		p.logger.WithFields(logrus.Fields{
			"event":        ev.Name(),
			"event_id":     ev.ID().String(),
			"aggregate_id": ev.AggregateID(),
		}).Debug("event published")
	}
	return nil
}

// LogPublisher only logs events. It stands in when no broker is configured.
type LogPublisher struct {
	logger *logrus.Logger
}

var _ application.EventPublishing = (*LogPublisher)(nil)

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, events []event.DomainEvent) error {
	for _, ev := range events {
		p.logger.WithFields(logrus.Fields{
			"event":        ev.Name(),
			"event_id":     ev.ID().String(),
			"aggregate_id": ev.AggregateID(),
			"changes":      ev.Changes(),
		}).Info("domain event")
	}
	return nil
}
