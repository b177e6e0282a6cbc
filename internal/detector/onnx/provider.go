// Package onnx runs YOLO ONNX artifacts locally through OpenCV's DNN
// module. This is the default provider: it is what the promoted artifact
// from the training pipeline is loaded into.
package onnx

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/orbital-guard/sentinel/internal/detector"
)

const (
	// inputSize is the square network input the model was exported with.
	inputSize = 640
	// nmsThreshold is the IoU threshold for non-maximum suppression.
	nmsThreshold = 0.45
)

// Provider implements detector.Detector over a gocv DNN net.
//
// OpenCV nets are not safe for concurrent Forward calls against a shared
// model, so Detect serializes on a mutex.
type Provider struct {
	mu        sync.Mutex
	net       gocv.Net
	loaded    bool
	threshold float64
}

var _ detector.Detector = (*Provider)(nil)

func New(threshold float64) *Provider {
	return &Provider{threshold: threshold}
}

// Load tries each artifact path in order and keeps the first net that
// loads. Returns detector.ErrNoArtifact when none do.
func (p *Provider) Load(candidates []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		net := gocv.ReadNet(path, "")
		if net.Empty() {
			continue
		}

		if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
			_ = net.Close()
			continue
		}
		if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
			_ = net.Close()
			continue
		}

		if p.loaded {
			_ = p.net.Close()
		}
		p.net = net
		p.loaded = true
		return nil
	}

	return fmt.Errorf("%w: tried %v", detector.ErrNoArtifact, candidates)
}

// Detect decodes the image, runs a forward pass and returns every box at
// or above the confidence floor, NMS-suppressed, in pixel corner
// coordinates of the original image.
func (p *Provider) Detect(ctx context.Context, imageBytes []byte) ([]detector.RawBox, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return nil, detector.ErrNoArtifact
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("decode image: empty frame")
	}

	// The model expects RGB input; IMDecode yields BGR, so swapRB does
	// the channel-order conversion here.
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(inputSize, inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	p.net.SetInput(blob, "")
	output := p.net.Forward("")
	defer output.Close()

	return p.decodeOutput(output, mat.Cols(), mat.Rows())
}

// decodeOutput parses the YOLOv8 output tensor (1 x (4+classes) x anchors)
// into corner boxes scaled back to the original image size.
func (p *Provider) decodeOutput(output gocv.Mat, imgW, imgH int) ([]detector.RawBox, error) {
	dims := output.Size()
	if len(dims) != 3 || dims[1] < 5 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	rows, cols := dims[1], dims[2]

	m := output.Reshape(1, rows)
	defer m.Close()

	scaleX := float64(imgW) / float64(inputSize)
	scaleY := float64(imgH) / float64(inputSize)

	var (
		rects   []image.Rectangle
		scores  []float32
		classes []int
	)

	for j := 0; j < cols; j++ {
		bestClass, bestScore := -1, float32(0)
		for r := 4; r < rows; r++ {
			if score := m.GetFloatAt(r, j); score > bestScore {
				bestScore = score
				bestClass = r - 4
			}
		}
		if float64(bestScore) < p.threshold {
			continue
		}

		cx := float64(m.GetFloatAt(0, j)) * scaleX
		cy := float64(m.GetFloatAt(1, j)) * scaleY
		w := float64(m.GetFloatAt(2, j)) * scaleX
		h := float64(m.GetFloatAt(3, j)) * scaleY

		rects = append(rects, image.Rect(
			int(cx-w/2), int(cy-h/2),
			int(cx+w/2), int(cy+h/2),
		))
		scores = append(scores, bestScore)
		classes = append(classes, bestClass)
	}

	if len(rects) == 0 {
		return []detector.RawBox{}, nil
	}

	keep := gocv.NMSBoxes(rects, scores, float32(p.threshold), nmsThreshold)

	boxes := make([]detector.RawBox, 0, len(keep))
	for _, i := range keep {
		boxes = append(boxes, detector.RawBox{
			ClassID:    classes[i],
			Confidence: float64(scores[i]),
			X1:         clamp(float64(rects[i].Min.X), 0, float64(imgW)),
			Y1:         clamp(float64(rects[i].Min.Y), 0, float64(imgH)),
			X2:         clamp(float64(rects[i].Max.X), 0, float64(imgW)),
			Y2:         clamp(float64(rects[i].Max.Y), 0, float64(imgH)),
		})
	}

	return boxes, nil
}

// Close releases the loaded net.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		return nil
	}
	p.loaded = false
	return p.net.Close()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
