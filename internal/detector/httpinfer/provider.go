// Package httpinfer delegates detection to a Python inference sidecar
// over HTTP. Useful when the model should keep running under the
// framework it was trained with.
package httpinfer

import (
	"context"

	"github.com/orbital-guard/sentinel/internal/detector"
)

// Provider implements detector.Detector over the sidecar client.
type Provider struct {
	client *Client
}

var _ detector.Detector = (*Provider)(nil)

func NewProvider(config Config) *Provider {
	return &Provider{client: NewClient(config)}
}

// Load is a readiness check: the artifact lives inside the sidecar, so
// candidates are ignored. A sidecar that is down at startup is treated
// like a missing artifact and the engine degrades to empty results.
func (p *Provider) Load(candidates []string) error {
	return p.client.Health(context.Background())
}

func (p *Provider) Detect(ctx context.Context, image []byte) ([]detector.RawBox, error) {
	resp, err := p.client.Detect(ctx, image)
	if err != nil {
		return nil, err
	}

	boxes := make([]detector.RawBox, 0, len(resp.Detections))
	for _, d := range resp.Detections {
		boxes = append(boxes, detector.RawBox{
			ClassID:    d.ClassID,
			Confidence: d.Confidence,
			X1:         d.X1,
			Y1:         d.Y1,
			X2:         d.X2,
			Y2:         d.Y2,
		})
	}
	return boxes, nil
}
