package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-guard/sentinel/internal/alert"
	"github.com/orbital-guard/sentinel/internal/domain"
	"github.com/orbital-guard/sentinel/internal/registry"
	"github.com/orbital-guard/sentinel/internal/ws"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []ws.EventType
	data   []interface{}
	ch     chan struct{}
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{ch: make(chan struct{}, 64)}
}

func (r *recordingBroadcaster) Broadcast(eventType ws.EventType, data interface{}) {
	r.mu.Lock()
	r.events = append(r.events, eventType)
	r.data = append(r.data, data)
	r.mu.Unlock()

	select {
	case r.ch <- struct{}{}:
	default:
	}
}

func (r *recordingBroadcaster) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type failingFeed struct{}

func (failingFeed) Snapshot() ([]domain.Detection, error) {
	return nil, errors.New("camera offline")
}

func newTestLoop(session *Session, feed Feed, hub Broadcaster) *Loop {
	reg := registry.Default()
	return NewLoop(session, feed, alert.NewGenerator(reg), hub, 10*time.Millisecond, slog.New(slog.DiscardHandler))
}

func TestLoop_BroadcastsWhileActive(t *testing.T) {
	session := NewSession()
	hub := newRecordingBroadcaster()
	loop := newTestLoop(session, NewSampleFeed(registry.Default()), hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	session.Start()

	select {
	case <-hub.ch:
	case <-time.After(1 * time.Second):
		t.Fatal("no broadcast after starting detection")
	}

	hub.mu.Lock()
	require.NotEmpty(t, hub.events)
	assert.Equal(t, ws.EventDetectionResult, hub.events[0])

	report, ok := hub.data[0].(domain.DetectionReport)
	require.True(t, ok)
	hub.mu.Unlock()

	// Demo feed carries FireExtinguisher and FirstAidBox; the other
	// three critical objects must raise alerts every cycle.
	require.Len(t, report.Detections, 2)
	assert.Equal(t, "FireExtinguisher", report.Detections[0].Object)
	require.Len(t, report.Alerts, 3)
	assert.Equal(t, "OxygenTank", report.Alerts[0].Object)
	assert.NotEmpty(t, report.Timestamp)
}

func TestLoop_SilentWhileInactive(t *testing.T) {
	session := NewSession()
	hub := newRecordingBroadcaster()
	loop := newTestLoop(session, NewSampleFeed(registry.Default()), hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	select {
	case <-hub.ch:
		t.Fatal("broadcast while detection inactive")
	case <-time.After(100 * time.Millisecond):
	}

	assert.Equal(t, 0, hub.count())
}

func TestLoop_StopHaltsBroadcasts(t *testing.T) {
	session := NewSession()
	hub := newRecordingBroadcaster()
	loop := newTestLoop(session, NewSampleFeed(registry.Default()), hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	session.Start()

	select {
	case <-hub.ch:
	case <-time.After(1 * time.Second):
		t.Fatal("no broadcast after starting detection")
	}

	session.Stop()
	// Let in-flight cycles drain, then measure
	time.Sleep(50 * time.Millisecond)
	before := hub.count()

	select {
	case <-hub.ch:
	default:
	}
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, before, hub.count(), "broadcasts must stop after stop_detection")

	// And resume after a restart
	session.Start()
	select {
	case <-hub.ch:
	case <-time.After(1 * time.Second):
		t.Fatal("no broadcast after restarting detection")
	}
}

func TestLoop_SurvivesFeedFailures(t *testing.T) {
	session := NewSession()
	hub := newRecordingBroadcaster()
	loop := newTestLoop(session, failingFeed{}, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	session.Start()
	time.Sleep(100 * time.Millisecond)

	// Failing cycles never broadcast and never kill the loop
	assert.Equal(t, 0, hub.count())
	select {
	case <-done:
		t.Fatal("loop terminated on cycle failure")
	default:
	}
}

func TestSession_Toggles(t *testing.T) {
	s := NewSession()

	assert.False(t, s.Active())
	s.Start()
	assert.True(t, s.Active())
	s.Stop()
	assert.False(t, s.Active())
}
