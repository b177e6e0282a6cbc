package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	started int
	stopped int
}

func (f *fakeController) Start() { f.started++ }
func (f *fakeController) Stop()  { f.stopped++ }

func newTestHub() *Hub {
	return NewHub([]string{"🧯 Fire Extinguisher", "🩹 First Aid Box"}, slog.New(slog.DiscardHandler))
}

func newTestClient(hub *Hub, ctrl Controller) *Client {
	return &Client{
		hub:  hub,
		id:   uuid.New(),
		ctrl: ctrl,
		send: make(chan []byte, 10),
	}
}

func TestNewHub(t *testing.T) {
	hub := newTestHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.broadcast)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
}

func TestHub_AddAndRemoveClient(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, &fakeController{})

	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, hub.ClientCount())

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_GreetsOnConnect(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newTestClient(hub, &fakeController{})
	hub.register <- client

	select {
	case msg := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventConnected, event.Type)

		data, ok := event.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Connected to Station Safety Monitor", data["status"])
		assert.Len(t, data["objects"], 2)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for greeting")
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client1 := newTestClient(hub, &fakeController{})
	client2 := newTestClient(hub, &fakeController{})

	hub.register <- client1
	hub.register <- client2
	time.Sleep(50 * time.Millisecond)

	// Drain greetings
	<-client1.send
	<-client2.send

	hub.Broadcast(EventDetectionResult, map[string]string{"message": "test"})
	time.Sleep(50 * time.Millisecond)

	for _, client := range []*Client{client1, client2} {
		select {
		case msg := <-client.send:
			var event Event
			require.NoError(t, json.Unmarshal(msg, &event))
			assert.Equal(t, EventDetectionResult, event.Type)
		case <-time.After(1 * time.Second):
			t.Fatal("timeout waiting for broadcast")
		}
	}
}

func TestHub_RunStopsOnContextCancel(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := newTestClient(hub, &fakeController{})
	hub.register <- client
	time.Sleep(50 * time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("hub did not stop on context cancel")
	}

	assert.Equal(t, 0, hub.ClientCount())
}

func TestClient_HandleCommand_StartStop(t *testing.T) {
	hub := newTestHub()
	ctrl := &fakeController{}
	client := newTestClient(hub, ctrl)

	client.handleCommand([]byte(`{"type":"start_detection"}`))
	assert.Equal(t, 1, ctrl.started)

	select {
	case msg := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventDetectionStarted, event.Type)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for start ack")
	}

	client.handleCommand([]byte(`{"type":"stop_detection"}`))
	assert.Equal(t, 1, ctrl.stopped)

	select {
	case msg := <-client.send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventDetectionStopped, event.Type)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for stop ack")
	}
}

func TestClient_CommandAfterSlowClientDropDoesNotPanic(t *testing.T) {
	hub := newTestHub()
	ctrl := &fakeController{}
	client := &Client{
		hub:  hub,
		id:   uuid.New(),
		ctrl: ctrl,
		send: make(chan []byte, 1),
	}
	hub.clients[client] = true

	// Fill the queue so the next broadcast drops the client and closes
	// its queue.
	require.True(t, client.trySend([]byte("backlog")))
	hub.broadcastAll(Event{Type: EventDetectionResult, Timestamp: time.Now()})
	assert.Equal(t, 0, hub.ClientCount())

	// The reader goroutine may still be decoding a command; its ack must
	// be a silent no-op, not a send on a closed channel.
	assert.NotPanics(t, func() {
		client.handleCommand([]byte(`{"type":"start_detection"}`))
	})
	assert.Equal(t, 1, ctrl.started)
}

func TestClient_CloseSendIsIdempotent(t *testing.T) {
	client := newTestClient(newTestHub(), &fakeController{})

	client.closeSend()
	assert.NotPanics(t, client.closeSend)
	assert.False(t, client.trySend([]byte("late")))
}

func TestClient_HandleCommand_IgnoresGarbage(t *testing.T) {
	hub := newTestHub()
	ctrl := &fakeController{}
	client := newTestClient(hub, ctrl)

	client.handleCommand([]byte(`not json`))
	client.handleCommand([]byte(`{"type":"reboot_station"}`))

	assert.Equal(t, 0, ctrl.started)
	assert.Equal(t, 0, ctrl.stopped)
	assert.Empty(t, client.send)
}
