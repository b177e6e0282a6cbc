package monitor

import (
	"github.com/orbital-guard/sentinel/internal/domain"
	"github.com/orbital-guard/sentinel/internal/registry"
)

// Feed produces the detection snapshot for one monitoring cycle.
// Swapping in a camera-backed feed replaces SampleFeed without touching
// the loop.
type Feed interface {
	Snapshot() ([]domain.Detection, error)
}

// SampleFeed is the demo feed: a fixed pair of detections standing in for
// a live camera. Offline/demo mode ships with this feed.
type SampleFeed struct {
	detections []domain.Detection
}

func NewSampleFeed(reg *registry.Registry) *SampleFeed {
	return &SampleFeed{
		detections: []domain.Detection{
			{
				Object:      "FireExtinguisher",
				DisplayName: reg.DisplayName("FireExtinguisher"),
				Confidence:  0.95,
				BBox:        domain.BBox{X: 100, Y: 150, Width: 80, Height: 120},
				Status:      domain.StatusDetected,
			},
			{
				Object:      "FirstAidBox",
				DisplayName: reg.DisplayName("FirstAidBox"),
				Confidence:  0.87,
				BBox:        domain.BBox{X: 300, Y: 200, Width: 90, Height: 60},
				Status:      domain.StatusDetected,
			},
		},
	}
}

func (f *SampleFeed) Snapshot() ([]domain.Detection, error) {
	out := make([]domain.Detection, len(f.detections))
	copy(out, f.detections)
	return out, nil
}
