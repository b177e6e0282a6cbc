// Package mock provides a deterministic detector for tests and
// development. The boxes mirror the demo feed used by the monitoring
// loop.
package mock

import (
	"context"
	"errors"

	"github.com/orbital-guard/sentinel/internal/detector"
)

// minImageSize marks a payload too small to be a plausible encoded image;
// the mock fails on those to exercise failure paths.
const minImageSize = 100

// ErrImageTooSmall is returned for payloads below minImageSize.
var ErrImageTooSmall = errors.New("image too small to decode")

// Provider implements detector.Detector with fixed output
type Provider struct{}

var _ detector.Detector = (*Provider)(nil)

func New() *Provider {
	return &Provider{}
}

// Load always succeeds; there is no artifact.
func (p *Provider) Load(candidates []string) error {
	return nil
}

// Detect returns one fire extinguisher and one first-aid box for any
// plausible image, and an error for payloads too small to be one.
func (p *Provider) Detect(ctx context.Context, image []byte) ([]detector.RawBox, error) {
	if len(image) < minImageSize {
		return nil, ErrImageTooSmall
	}

	return []detector.RawBox{
		{ClassID: 6, Confidence: 0.95, X1: 100, Y1: 150, X2: 180, Y2: 270},
		{ClassID: 2, Confidence: 0.87, X1: 300, Y1: 200, X2: 390, Y2: 260},
	}, nil
}
