package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event is the envelope pushed to connected clients
type Event struct {
	// Type of event, e.g. "notification"
	Type string `json:"type"`

	// Event payload
	Data interface{} `json:"data"`

	// Timestamp when the event was pushed
	Timestamp time.Time `json:"timestamp"`
}

type delivery struct {
	userID int64
	data   []byte
}

// Hub maintains the set of active clients per user and pushes events to them
type Hub struct {
	// Registered clients organized by user ID. A user may have several tabs open.
	clients map[int64]map[*Client]bool

	// Outbound events waiting to be fanned out
	push chan delivery

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
	now    func() time.Time
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		push:       make(chan delivery, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "websocket_hub").Logger(),
		now:        time.Now,
	}
}

// Run handles registrations and pushes until ctx is cancelled,
// then closes every client connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.push:
			h.deliver(d)

		case <-ctx.Done():
			h.closeAll()
			h.logger.Info().Msg("WebSocket hub stopped")
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info().
		Int64("userID", client.userID).
		Int("connections", len(h.clients[client.userID])).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Info().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[d.userID]
	if !ok {
		h.logger.Debug().Int64("userID", d.userID).Msg("User not connected, skipping push")
		return
	}

	for client := range conns {
		select {
		case client.send <- d.data:
		default:
			// slow consumer
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			h.removeLocked(client)
		}
	}
}

// PushToUser queues an event for every connection of the user. It never blocks:
// when the hub is stopped or its buffer is full the event is dropped and logged.
func (h *Hub) PushToUser(userID int64, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data, Timestamp: h.now().UTC()})
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to marshal websocket event")
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.push <- delivery{userID: userID, data: payload}:
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", eventType).Msg("Hub buffer full, dropping event")
	}
}

// ClientCount returns the number of live connections for a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) enroll(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
