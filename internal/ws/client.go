package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Controller toggles the shared monitoring session. One session is shared
// by all clients: any client's start affects everyone's broadcasts.
type Controller interface {
	Start()
	Stop()
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   uuid.UUID
	ctrl Controller
	send chan []byte

	// Both ReadPump and the hub goroutine send on the queue, so close
	// and send are serialized through mu.
	mu     sync.Mutex
	closed bool
}

// trySend queues a message unless the client is shut down or its queue
// is full.
func (c *Client) trySend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// closeSend shuts the client's queue down. Idempotent; once it returns
// no goroutine can send on the queue again.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handleCommand(message)
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// handleCommand decodes an inbound command and acknowledges it. Unknown
// or malformed messages are ignored.
func (c *Client) handleCommand(raw []byte) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return
	}

	switch cmd.Type {
	case CommandStartDetection:
		c.ctrl.Start()
		c.reply(EventDetectionStarted, AckData{Status: "Detection started"})
	case CommandStopDetection:
		c.ctrl.Stop()
		c.reply(EventDetectionStopped, AckData{Status: "Detection stopped"})
	}
}

// reply sends an event to this client only. A full send queue drops the
// reply; the hub will drop the client on its next broadcast.
func (c *Client) reply(eventType EventType, data interface{}) {
	message, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		return
	}

	c.trySend(message)
}
