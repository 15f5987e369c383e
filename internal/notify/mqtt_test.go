package notify

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/blinkgame/internal/game"
	"github.com/ayusman/blinkgame/internal/logging"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	mqtt.Token
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient records publishes. Methods the publisher never calls panic
// through the nil embedded interface.
type fakeClient struct {
	mqtt.Client
	mu           sync.Mutex
	messages     []published
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func TestMQTTPublisher_Publish(t *testing.T) {
	client := &fakeClient{}
	p := NewMQTTPublisher(client, "blinkgame/events", 1, logging.Discard())

	ts := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	p.Publish(game.Event{Type: game.EventArmed, SessionID: "s1", State: "armed", Timestamp: ts})
	p.Publish(game.Event{Type: game.EventEnded, SessionID: "s1", State: "ended", ElapsedSeconds: 9, Timestamp: ts})

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.messages) != 2 {
		t.Fatalf("published %d messages, want 2", len(client.messages))
	}

	tests := []struct {
		topic   string
		typ     game.EventType
		elapsed int64
	}{
		{"blinkgame/events/armed", game.EventArmed, 0},
		{"blinkgame/events/ended", game.EventEnded, 9},
	}
	for i, tt := range tests {
		msg := client.messages[i]
		if msg.topic != tt.topic {
			t.Errorf("message %d topic = %q, want %q", i, msg.topic, tt.topic)
		}
		if msg.qos != 1 {
			t.Errorf("message %d qos = %d, want 1", i, msg.qos)
		}

		var got game.Event
		if err := json.Unmarshal(msg.payload, &got); err != nil {
			t.Fatalf("message %d payload: %v", i, err)
		}
		if got.Type != tt.typ || got.SessionID != "s1" || got.ElapsedSeconds != tt.elapsed || !got.Timestamp.Equal(ts) {
			t.Errorf("message %d = %+v", i, got)
		}
	}
}

func TestMQTTPublisher_DeliveryErrorIsNotFatal(t *testing.T) {
	client := &fakeClient{err: errors.New("broker gone")}
	p := NewMQTTPublisher(client, "t", 0, logging.Discard())

	p.Publish(game.Event{Type: game.EventCancelled, SessionID: "s2"})

	client.mu.Lock()
	n := len(client.messages)
	client.mu.Unlock()
	if n != 1 {
		t.Errorf("published %d messages, want 1", n)
	}
}

func TestMQTTPublisher_Close(t *testing.T) {
	client := &fakeClient{}
	p := NewMQTTPublisher(client, "t", 0, logging.Discard())

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !client.disconnected {
		t.Error("client not disconnected")
	}
}

func TestMQTTPublisher_IsGamePublisher(t *testing.T) {
	var _ game.Publisher = (*MQTTPublisher)(nil)
}
