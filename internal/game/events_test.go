package game

import "testing"

func TestPublishers_FanOut(t *testing.T) {
	var a, b []EventType
	ps := Publishers{
		PublisherFunc(func(e Event) { a = append(a, e.Type) }),
		PublisherFunc(func(e Event) { b = append(b, e.Type) }),
	}

	ps.Publish(Event{Type: EventArmed})
	ps.Publish(Event{Type: EventEnded})

	for _, got := range [][]EventType{a, b} {
		if len(got) != 2 || got[0] != EventArmed || got[1] != EventEnded {
			t.Errorf("received %v, want [armed ended]", got)
		}
	}
}

func TestPublishers_Empty(t *testing.T) {
	Publishers(nil).Publish(Event{Type: EventArmed})
}
