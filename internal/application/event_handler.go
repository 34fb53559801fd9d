package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/event"
)

// Notification templates, one per user event.
const (
	TemplateUserCreated        = "user_created"
	TemplateUserDetailsChanged = "user_details_changed"
	TemplateUserDeleted        = "user_deleted"
)

// UserEventHandler reacts to published user events: it notifies the user and
// keeps the search index in sync. Every collaborator is optional; Users is
// used to find the recipient when a change leaves the email untouched.
type UserEventHandler struct {
	Notifier NotificationSending
	Index    UserIndexing
	Users    UserDisplay
	Logger   *logrus.Logger
}

func NewUserEventHandler(notifier NotificationSending, index UserIndexing, users UserDisplay, logger *logrus.Logger) *UserEventHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserEventHandler{Notifier: notifier, Index: index, Users: users, Logger: logger}
}

// Handle processes one event. Unknown event names are ignored. A returned
// error means the event should be retried.
func (h *UserEventHandler) Handle(ctx context.Context, env event.Envelope) error {
	log := h.Logger.WithFields(logrus.Fields{
		"event_id":     env.ID.String(),
		"event":        env.Name,
		"aggregate_id": env.AggregateID,
	})

	switch env.Name {
	case event.UserCreated:
		if err := h.upsert(ctx, env, currentValues(env.Changes)); err != nil {
			return err
		}
		return h.notify(ctx, TemplateUserCreated, currentString(env.Changes, entity.FieldEmailAddress), map[string]any{
			"Name":  currentString(env.Changes, entity.FieldFullName),
			"Email": currentString(env.Changes, entity.FieldEmailAddress),
		})

	case event.UserDetailsChanged:
		if err := h.upsert(ctx, env, currentValues(env.Changes)); err != nil {
			return err
		}
		// a changed address is notified at the old one
		to := previousString(env.Changes, entity.FieldEmailAddress)
		if to == "" {
			var err error
			if to, err = h.lookupEmail(ctx, env.AggregateID); err != nil {
				return err
			}
		}
		if to == "" {
			log.Debug("no recipient for details change")
			return nil
		}
		return h.notify(ctx, TemplateUserDetailsChanged, to, map[string]any{
			"Name":    currentString(env.Changes, entity.FieldFullName),
			"Changes": describeChanges(env.Changes),
		})

	case event.UserDeleted:
		if h.Index != nil {
			if err := h.Index.Remove(ctx, env.AggregateID); err != nil {
				return fmt.Errorf("remove %s from index: %w", env.AggregateID, err)
			}
		}
		return h.notify(ctx, TemplateUserDeleted, previousString(env.Changes, entity.FieldEmailAddress), map[string]any{
			"Name": previousString(env.Changes, entity.FieldFullName),
		})

	default:
		log.Debug("ignoring unknown event")
		return nil
	}
}

func (h *UserEventHandler) upsert(ctx context.Context, env event.Envelope, fields map[string]any) error {
	if h.Index == nil || len(fields) == 0 {
		return nil
	}
	if err := h.Index.Upsert(ctx, env.AggregateID, fields); err != nil {
		return fmt.Errorf("index %s: %w", env.AggregateID, err)
	}
	return nil
}

func (h *UserEventHandler) notify(ctx context.Context, template, to string, data map[string]any) error {
	if h.Notifier == nil || to == "" {
		return nil
	}
	if err := h.Notifier.Send(ctx, Notification{To: to, Template: template, Data: data}); err != nil {
		return fmt.Errorf("send %s to %s: %w", template, to, err)
	}
	return nil
}

func (h *UserEventHandler) lookupEmail(ctx context.Context, rawID string) (string, error) {
	if h.Users == nil {
		return "", nil
	}
	id, err := entity.UserIDFrom(rawID)
	if err != nil {
		return "", nil
	}
	u, found, err := h.Users.DisplayByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !found || !u.HasEmailAddress() {
		return "", nil
	}
	return u.EmailAddress().String(), nil
}

func currentValues(changes map[string]event.Change) map[string]any {
	out := make(map[string]any, len(changes))
	for field, c := range changes {
		if c.Current != nil {
			out[field] = c.Current
		}
	}
	return out
}

func currentString(changes map[string]event.Change, field string) string {
	if c, ok := changes[field]; ok && c.Current != nil {
		return fmt.Sprint(c.Current)
	}
	return ""
}

func previousString(changes map[string]event.Change, field string) string {
	if c, ok := changes[field]; ok && c.Previous != nil {
		return fmt.Sprint(c.Previous)
	}
	return ""
}

func describeChanges(changes map[string]event.Change) map[string]string {
	out := make(map[string]string, len(changes))
	for field, c := range changes {
		out[field] = fmt.Sprintf("%v -> %v", c.Previous, c.Current)
	}
	return out
}
