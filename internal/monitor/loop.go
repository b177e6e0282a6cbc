// Package monitor runs the continuous-monitoring background loop and
// owns the shared detection_active session flag.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/orbital-guard/sentinel/internal/domain"
	"github.com/orbital-guard/sentinel/internal/metrics"
	"github.com/orbital-guard/sentinel/internal/ws"
)

// Broadcaster publishes events to connected clients.
type Broadcaster interface {
	Broadcast(eventType ws.EventType, data interface{})
}

// AlertGenerator evaluates a detection snapshot for missing critical
// objects.
type AlertGenerator interface {
	Generate(detections []domain.Detection) []domain.Alert
}

// Loop is the single background monitoring worker. While the session is
// active it publishes a detection_result every interval; a failed cycle
// is logged and skipped, never fatal.
type Loop struct {
	session  *Session
	feed     Feed
	alerts   AlertGenerator
	hub      Broadcaster
	interval time.Duration
	logger   *slog.Logger
}

func NewLoop(session *Session, feed Feed, alerts AlertGenerator, hub Broadcaster, interval time.Duration, logger *slog.Logger) *Loop {
	return &Loop{
		session:  session,
		feed:     feed,
		alerts:   alerts,
		hub:      hub,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop and blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("monitoring loop started", slog.Duration("interval", l.interval))

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("monitoring loop stopped")
			return
		case <-ticker.C:
			l.cycle()
		}
	}
}

func (l *Loop) cycle() {
	metrics.MonitorCycles.Inc()

	if !l.session.Active() {
		return
	}

	detections, err := l.feed.Snapshot()
	if err != nil {
		metrics.MonitorCycleFailures.Inc()
		l.logger.Error("monitoring cycle failed", slog.Any("error", err))
		return
	}

	l.hub.Broadcast(ws.EventDetectionResult, domain.DetectionReport{
		Detections: detections,
		Alerts:     l.alerts.Generate(detections),
		Timestamp:  time.Now().Format(domain.TimestampLayout),
	})
}
