// Package engine turns raw detector output into normalized detection
// records. It owns the availability-first error policy: an unloaded model
// or a failed detector call degrades to an empty result instead of
// failing the caller, with the failure logged and counted.
package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/orbital-guard/sentinel/internal/detector"
	"github.com/orbital-guard/sentinel/internal/domain"
	"github.com/orbital-guard/sentinel/internal/metrics"
	"github.com/orbital-guard/sentinel/internal/registry"
)

type Engine struct {
	det    detector.Detector
	reg    *registry.Registry
	logger *slog.Logger
	loaded atomic.Bool
}

func New(det detector.Detector, reg *registry.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		det:    det,
		reg:    reg,
		logger: logger,
	}
}

// Load tries each artifact candidate in order. On failure the engine
// stays up and Detect returns empty results until a later Load succeeds.
func (e *Engine) Load(candidates ...string) error {
	if err := e.det.Load(candidates); err != nil {
		e.logger.Warn("no model artifact loadable, serving empty detections",
			slog.Any("candidates", candidates),
			slog.Any("error", err),
		)
		return err
	}

	e.loaded.Store(true)
	e.logger.Info("detection model loaded", slog.Any("candidates", candidates))
	return nil
}

// Loaded reports whether a model artifact is available.
func (e *Engine) Loaded() bool {
	return e.loaded.Load()
}

// Detect runs the detector on an encoded image and maps every box through
// the registry. It never returns an error: with no model loaded or a
// failing detector the result is an empty slice.
func (e *Engine) Detect(ctx context.Context, image []byte) []domain.Detection {
	if !e.loaded.Load() {
		return []domain.Detection{}
	}

	start := time.Now()
	boxes, err := e.det.Detect(ctx, image)
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DetectorFailures.Inc()
		e.logger.Error("detector call failed", slog.Any("error", err))
		return []domain.Detection{}
	}

	detections := make([]domain.Detection, 0, len(boxes))
	for _, box := range boxes {
		name := e.reg.Name(box.ClassID)
		detections = append(detections, domain.Detection{
			Object:      name,
			DisplayName: e.reg.DisplayName(name),
			Confidence:  domain.Confidence(box.Confidence),
			BBox: domain.BBox{
				X:      box.X1,
				Y:      box.Y1,
				Width:  nonNegative(box.X2 - box.X1),
				Height: nonNegative(box.Y2 - box.Y1),
			},
			Status: domain.StatusDetected,
		})
	}

	return detections
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
