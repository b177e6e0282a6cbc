package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"5000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Detector
	DetectorProvider    string  `envconfig:"DETECTOR_PROVIDER" default:"onnx"`
	ModelPath           string  `envconfig:"MODEL_PATH" default:"models/station_safety.onnx"`
	FallbackModelPath   string  `envconfig:"FALLBACK_MODEL_PATH" default:"models/yolov8n.onnx"`
	ConfidenceThreshold float64 `envconfig:"CONFIDENCE_THRESHOLD" default:"0.25"`
	InferenceURL        string  `envconfig:"INFERENCE_URL" default:"http://localhost:8000"`
	AWSRegion           string  `envconfig:"AWS_REGION" default:"us-east-1"`

	// Monitoring loop
	MonitorInterval time.Duration `envconfig:"MONITOR_INTERVAL" default:"2s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
