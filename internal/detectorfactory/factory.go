// Package detectorfactory selects a concrete detector provider at
// startup. It lives apart from package detector so the providers can
// import the Detector interface without creating an import cycle.
package detectorfactory

import (
	"context"
	"fmt"

	"github.com/orbital-guard/sentinel/internal/config"
	"github.com/orbital-guard/sentinel/internal/detector"
	"github.com/orbital-guard/sentinel/internal/detector/httpinfer"
	"github.com/orbital-guard/sentinel/internal/detector/mock"
	"github.com/orbital-guard/sentinel/internal/detector/onnx"
	"github.com/orbital-guard/sentinel/internal/detector/rekognition"
	"github.com/orbital-guard/sentinel/internal/registry"
)

// ProviderType defines supported detector provider types
type ProviderType string

const (
	// ProviderTypeONNX runs the model locally through OpenCV DNN
	ProviderTypeONNX ProviderType = "onnx"
	// ProviderTypeHTTP delegates inference to an HTTP sidecar service
	ProviderTypeHTTP ProviderType = "httpinfer"
	// ProviderTypeRekognition uses AWS Rekognition label detection
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock returns deterministic boxes for tests and dev
	ProviderTypeMock ProviderType = "mock"
)

// New creates a Detector instance based on configuration.
//
// Environment variables:
//   - DETECTOR_PROVIDER: "onnx", "httpinfer", "rekognition" or "mock"
//   - MODEL_PATH / FALLBACK_MODEL_PATH: artifact candidates for "onnx"
//   - INFERENCE_URL: base URL for "httpinfer"
//   - AWS_REGION plus the AWS SDK credential chain for "rekognition"
func New(ctx context.Context, cfg *config.Config, reg *registry.Registry) (detector.Detector, error) {
	switch ProviderType(cfg.DetectorProvider) {
	case ProviderTypeONNX, "":
		return onnx.New(cfg.ConfidenceThreshold), nil

	case ProviderTypeHTTP:
		httpCfg := httpinfer.DefaultConfig()
		if cfg.InferenceURL != "" {
			httpCfg.BaseURL = cfg.InferenceURL
		}
		return httpinfer.NewProvider(httpCfg), nil

	case ProviderTypeRekognition:
		prov, err := rekognition.NewProvider(ctx, rekognition.Config{
			Region:        cfg.AWSRegion,
			MinConfidence: cfg.ConfidenceThreshold,
		}, reg.CanonicalNames())
		if err != nil {
			return nil, fmt.Errorf("create rekognition provider: %w", err)
		}
		return prov, nil

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown detector provider: %s (supported: %s, %s, %s, %s)",
			cfg.DetectorProvider, ProviderTypeONNX, ProviderTypeHTTP, ProviderTypeRekognition, ProviderTypeMock)
	}
}
