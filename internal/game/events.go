package game

import "time"

// EventType names a session transition.
type EventType string

const (
	EventArmed     EventType = "armed"
	EventEnded     EventType = "ended"
	EventCancelled EventType = "cancelled"
)

// Event describes a transition, for spectators and the results store.
type Event struct {
	Type           EventType `json:"type"`
	SessionID      string    `json:"session_id"`
	State          string    `json:"state"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher receives transition events. Publish must not block the frame loop.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

// Publish calls f(e).
func (f PublisherFunc) Publish(e Event) { f(e) }

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

// Publishers fans each event out to every publisher in order.
type Publishers []Publisher

// Publish sends e to each publisher.
func (ps Publishers) Publish(e Event) {
	for _, p := range ps {
		p.Publish(e)
	}
}
