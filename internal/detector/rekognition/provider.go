// Package rekognition implements the detector over AWS Rekognition label
// detection. Labels are matched against the registry's canonical names
// (Rekognition says "Fire Extinguisher", the registry says
// "FireExtinguisher"); labels outside the registry are dropped.
package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/orbital-guard/sentinel/internal/detector"
)

// Provider implements detector.Detector using AWS Rekognition
type Provider struct {
	client *Client
	// classIDs maps a normalized label (lowercase, no spaces) to the
	// registry class id
	classIDs map[string]int
}

var _ detector.Detector = (*Provider)(nil)

// NewProvider creates a Rekognition provider. canonicalNames must be
// ordered by class id, as returned by the registry.
func NewProvider(ctx context.Context, cfg Config, canonicalNames []string) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	classIDs := make(map[string]int, len(canonicalNames))
	for id, name := range canonicalNames {
		classIDs[normalizeLabel(name)] = id
	}

	return &Provider{
		client:   client,
		classIDs: classIDs,
	}, nil
}

// Load is a no-op success: the model lives in the cloud and there is no
// local artifact to load.
func (p *Provider) Load(candidates []string) error {
	return nil
}

// Detect maps Rekognition label instances to registry class ids. The
// returned corner boxes are in pixel space, which requires reading the
// image dimensions since Rekognition reports ratio boxes.
func (p *Provider) Detect(ctx context.Context, imageBytes []byte) ([]detector.RawBox, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image dimensions: %w", err)
	}
	imgW, imgH := float64(cfg.Width), float64(cfg.Height)

	labels, err := p.client.DetectLabels(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	var boxes []detector.RawBox
	for _, label := range labels {
		if label.Name == nil {
			continue
		}
		classID, ok := p.classIDs[normalizeLabel(*label.Name)]
		if !ok {
			continue
		}

		for _, inst := range label.Instances {
			box := inst.BoundingBox
			if box == nil || box.Left == nil || box.Top == nil || box.Width == nil || box.Height == nil {
				continue
			}

			confidence := float64(0)
			if inst.Confidence != nil {
				confidence = float64(*inst.Confidence) / 100
			}

			x1 := float64(*box.Left) * imgW
			y1 := float64(*box.Top) * imgH
			boxes = append(boxes, detector.RawBox{
				ClassID:    classID,
				Confidence: confidence,
				X1:         x1,
				Y1:         y1,
				X2:         x1 + float64(*box.Width)*imgW,
				Y2:         y1 + float64(*box.Height)*imgH,
			})
		}
	}

	return boxes, nil
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.ReplaceAll(label, " ", ""))
}
