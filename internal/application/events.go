package application

import (
	"context"
	"expvar"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/event"
)

var (
	usersCreated = expvar.NewInt("users_created")
	usersChanged = expvar.NewInt("users_details_changed")
	usersDeleted = expvar.NewInt("users_deleted")
	eventsFailed = expvar.NewInt("events_publish_failed")
)

// Hand-off retry policy for drainEvents. Each retry doubles the wait.
var (
	publishAttempts = 4
	publishBackoff  = 100 * time.Millisecond
)

// drainEvents publishes the pending events of agg and clears them once the
// publisher accepted all of them. It must run after the state change was
// persisted. The hand-off ignores cancellation of ctx, since the change is
// already committed, and is retried with backoff; events stay pending only
// when every attempt failed.
func drainEvents(ctx context.Context, pub EventPublishing, logger *logrus.Logger, agg event.AggregateRoot) {
	events := agg.ListEvents()
	if len(events) == 0 || pub == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var err error
	wait := publishBackoff
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		if err = pub.Publish(ctx, events); err == nil {
			agg.ClearEvents()
			return
		}
		if attempt == publishAttempts {
			break
		}
		if logger != nil {
			logger.WithError(err).WithField("attempt", attempt).Warn("publish domain events failed; retrying")
		}
		time.Sleep(wait)
		wait *= 2
	}

	eventsFailed.Add(1)
	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"aggregate_id": events[0].AggregateID(),
			"events":       len(events),
			"attempts":     publishAttempts,
		}).Error("publish domain events failed")
	}
}
