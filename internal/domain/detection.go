package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TimestampLayout is the human-readable timestamp format used on the wire.
const TimestampLayout = "2006-01-02 15:04:05"

// StatusDetected is the only detection status the system emits.
const StatusDetected = "detected"

// Confidence is a detector score in [0,1]. It marshals as a quoted
// two-decimal string ("0.95") because that is the wire format existing
// clients parse.
type Confidence float64

func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%.2f"`, float64(c))), nil
}

func (c *Confidence) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse confidence %q: %w", s, err)
	}
	*c = Confidence(v)
	return nil
}

// BBox is a detection box in image pixel space, top-left anchored.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is one detected object in a single frame. Not persisted.
type Detection struct {
	Object      string     `json:"object"`
	DisplayName string     `json:"display_name"`
	Confidence  Confidence `json:"confidence"`
	BBox        BBox       `json:"bbox"`
	Status      string     `json:"status"`
}

type Severity string

const (
	SeverityCritical Severity = "critical"
)

// Alert flags a critical object missing from a detection result.
// Alerts are generated fresh on every evaluation and never stored;
// ids repeat if the same object is missing within the same second.
type Alert struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
	Timestamp string   `json:"timestamp"`
	Object    string   `json:"object"`
}

// DetectionReport is the combined result shape shared by the upload
// endpoint and the detection_result websocket event.
type DetectionReport struct {
	Detections []Detection `json:"detections"`
	Alerts     []Alert     `json:"alerts"`
	Timestamp  string      `json:"timestamp"`
}

// SystemStatus is the read-only status summary, derived on demand.
type SystemStatus struct {
	Operational     bool `json:"operational"`
	ModelLoaded     bool `json:"model_loaded"`
	DetectionActive bool `json:"detection_active"`
	TotalClasses    int  `json:"total_classes"`
	CriticalObjects int  `json:"critical_objects"`
}
