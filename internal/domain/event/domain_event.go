package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event names recorded by the user aggregate.
const (
	UserCreated        = "user.created"
	UserDetailsChanged = "user.details_changed"
	UserDeleted        = "user.deleted"
)

// Change describes one field transition.
type Change struct {
	Previous any `json:"previous"`
	Current  any `json:"current"`
}

// DomainEvent is an immutable fact about an aggregate.
type DomainEvent struct {
	id          uuid.UUID
	name        string
	aggregateID string
	changes     map[string]Change
	occurredAt  time.Time
}

// New creates an event stamped with a fresh id and the current UTC time.
// The changes map is copied.
func New(name, aggregateID string, changes map[string]Change) DomainEvent {
	return DomainEvent{
		id:          uuid.New(),
		name:        name,
		aggregateID: aggregateID,
		changes:     copyChanges(changes),
		occurredAt:  time.Now().UTC(),
	}
}

func (e DomainEvent) ID() uuid.UUID         { return e.id }
func (e DomainEvent) Name() string          { return e.name }
func (e DomainEvent) AggregateID() string   { return e.aggregateID }
func (e DomainEvent) OccurredAt() time.Time { return e.occurredAt }

// Changes returns a copy of the changed fields.
func (e DomainEvent) Changes() map[string]Change { return copyChanges(e.changes) }

// Change returns the transition recorded for field, if any.
func (e DomainEvent) Change(field string) (Change, bool) {
	c, ok := e.changes[field]
	return c, ok
}

// Envelope is the wire form of a DomainEvent.
type Envelope struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	AggregateID string            `json:"aggregate_id"`
	Changes     map[string]Change `json:"changes,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// MarshalJSON encodes the event as an Envelope.
func (e DomainEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(Envelope{
		ID:          e.id,
		Name:        e.name,
		AggregateID: e.aggregateID,
		Changes:     e.changes,
		OccurredAt:  e.occurredAt,
	})
}

func copyChanges(in map[string]Change) map[string]Change {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]Change, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
