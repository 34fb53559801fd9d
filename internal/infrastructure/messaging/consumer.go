package messaging

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/event"
)

// Handler processes one decoded event. An error requeues the message.
type Handler interface {
	Handle(ctx context.Context, env event.Envelope) error
}

// Consume drains deliveries until the channel closes or ctx is done. Messages
// that do not decode are dropped; handler failures are requeued.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, h Handler, logger *logrus.Logger) error {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			handleDelivery(ctx, msg, h, logger)
		}
	}
}

func handleDelivery(ctx context.Context, msg amqp.Delivery, h Handler, logger *logrus.Logger) {
	log := logger.WithField("routing_key", msg.RoutingKey)

	var env event.Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil || env.Name == "" {
		log.WithError(err).Error("bad message")
		if nErr := msg.Nack(false, false); nErr != nil {
			log.WithError(nErr).Error("nack failed")
		}
		return
	}

	start := time.Now()
	if err := h.Handle(ctx, env); err != nil {
		// a redelivered message already had its retry
		requeue := !msg.Redelivered
		log.WithError(err).WithFields(logrus.Fields{"event_id": env.ID.String(), "requeue": requeue}).Error("handle event failed")
		if nErr := msg.Nack(false, requeue); nErr != nil {
			log.WithError(nErr).Error("nack failed")
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		log.WithError(err).Error("ack failed")
		return
	}
	log.WithFields(logrus.Fields{
		"event_id":    env.ID.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("event processed")
}
