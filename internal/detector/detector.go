// Package detector defines the interface between the service and the
// underlying object-detection backend, plus the factory that selects a
// concrete provider at startup.
package detector

import (
	"context"
	"errors"
)

// ErrNoArtifact is returned by Load when none of the candidate model
// artifacts could be loaded.
var ErrNoArtifact = errors.New("no loadable model artifact found")

// RawBox is one detector output box in the detector's native corner
// format: two corner points in image pixel space plus class and score.
type RawBox struct {
	ClassID    int
	Confidence float64
	X1, Y1     float64
	X2, Y2     float64
}

// Detector is the external detection capability: load a model artifact,
// then turn images into boxes. Implementations must be safe for
// concurrent Detect calls.
type Detector interface {
	// Load tries each artifact candidate in order and keeps the first
	// one that loads. Providers without a local artifact (cloud, HTTP
	// sidecar) treat Load as a readiness check.
	Load(candidates []string) error

	// Detect runs inference on an encoded image and returns every box at
	// or above the provider's confidence floor.
	Detect(ctx context.Context, image []byte) ([]RawBox, error)
}
