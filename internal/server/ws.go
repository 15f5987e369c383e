package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/blinkgame/internal/game"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// eventBuffer is how many events may queue before new ones are dropped.
const eventBuffer = 32

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventHub broadcasts game transitions to websocket clients. It implements
// game.Publisher without ever blocking the frame loop.
type EventHub struct {
	events  chan game.Event
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	log     logrus.FieldLogger
}

// NewEventHub creates an EventHub. Call Run to start broadcasting.
func NewEventHub(log logrus.FieldLogger) *EventHub {
	return &EventHub{
		events:  make(chan game.Event, eventBuffer),
		clients: make(map[*websocket.Conn]bool),
		log:     log,
	}
}

// Publish queues e for broadcast, dropping it if the queue is full.
func (h *EventHub) Publish(e game.Event) {
	select {
	case h.events <- e:
	default:
		h.log.WithField("type", e.Type).Warn("event queue full, dropping event")
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run broadcasts queued events until ctx is done.
func (h *EventHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-h.events:
			h.broadcast(e)
		}
	}
}

func (h *EventHub) broadcast(e game.Event) {
	msg, err := jsoniter.Marshal(e)
	if err != nil {
		h.log.WithError(err).Error("marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.WithError(err).Debug("write event to client")
		}
	}
}
