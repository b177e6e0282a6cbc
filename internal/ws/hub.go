package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/orbital-guard/sentinel/internal/metrics"
)

// Hub fans events out to every connected client. There is no per-client
// detection state and no backpressure: a client that cannot keep up is
// dropped.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	greeting   ConnectedData
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewHub creates a hub that greets new clients with the given display
// names.
func NewHub(objects []string, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		greeting: ConnectedData{
			Status:  "Connected to Station Safety Monitor",
			Objects: objects,
		},
		logger: logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastAll(event)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	h.logger.Info("client connected",
		slog.String("client_id", client.id.String()),
		slog.Int("total", h.ClientCount()),
	)

	client.reply(EventConnected, h.greeting)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()

		h.logger.Info("client disconnected",
			slog.String("client_id", client.id.String()),
			slog.Int("total", len(h.clients)),
		)
	}
}

func (h *Hub) broadcastAll(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal event", slog.Any("error", err))
		return
	}

	metrics.Broadcasts.Inc()

	for client := range h.clients {
		if !client.trySend(message) {
			delete(h.clients, client)
			client.closeSend()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		client.closeSend()
	}
}

// Broadcast queues an event for every connected client. Fire-and-forget:
// a full queue drops the event rather than blocking the caller.
func (h *Hub) Broadcast(eventType EventType, data interface{}) {
	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
