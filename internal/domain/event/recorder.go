// Package event holds domain events and the bookkeeping aggregates use to
// accumulate them until a publisher drains them.
package event

// AggregateRoot is implemented by aggregates that record domain events.
type AggregateRoot interface {
	ListEvents() []DomainEvent
	ClearEvents()
}

// Recorder is embedded by aggregates to own their pending events. The zero
// value is ready to use.
type Recorder struct {
	pending []DomainEvent
}

// Record appends e to the pending events.
func (r *Recorder) Record(e DomainEvent) {
	r.pending = append(r.pending, e)
}

// ListEvents returns the pending events in the order they were recorded.
func (r *Recorder) ListEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// ClearEvents discards all pending events.
func (r *Recorder) ClearEvents() {
	r.pending = nil
}
