package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// StatusResponse represents the system status payload
type StatusResponse struct {
	Operational     bool `json:"operational" example:"true"`
	ModelLoaded     bool `json:"model_loaded" example:"true"`
	DetectionActive bool `json:"detection_active" example:"false"`
	TotalClasses    int  `json:"total_classes" example:"7"`
	CriticalObjects int  `json:"critical_objects" example:"5"`
}

// DetectionResponse represents a single detected object
type DetectionResponse struct {
	Object      string  `json:"object" example:"FireExtinguisher"`
	DisplayName string  `json:"display_name" example:"🧯 Fire Extinguisher"`
	Confidence  string  `json:"confidence" example:"0.95"`
	BBox        BBoxDoc `json:"bbox"`
	Status      string  `json:"status" example:"detected"`
}

// BBoxDoc represents a bounding box in pixel coordinates
type BBoxDoc struct {
	X      int `json:"x" example:"100"`
	Y      int `json:"y" example:"150"`
	Width  int `json:"width" example:"80"`
	Height int `json:"height" example:"120"`
}

// AlertDoc represents a missing critical object alert
type AlertDoc struct {
	ID        string `json:"id" example:"alert_OxygenTank_1700000000"`
	Message   string `json:"message" example:"🛢️ Oxygen Tank not detected!"`
	Severity  string `json:"severity" example:"critical"`
	Timestamp string `json:"timestamp" example:"2024-01-01 12:00:00"`
	Object    string `json:"object" example:"OxygenTank"`
}

// DetectionReportResponse represents the upload detection result
type DetectionReportResponse struct {
	Detections []DetectionResponse `json:"detections"`
	Alerts     []AlertDoc          `json:"alerts"`
	Timestamp  string              `json:"timestamp" example:"2024-01-01 12:00:00"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"MISSING_FILE"`
	Message string `json:"message" example:"No file provided"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Station Sentinel API",
		Version:     "v0.1.0",
		Description: "Safety equipment monitoring API with object detection, alerting and realtime broadcast",
		Host:        "localhost:5000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// GET /api/status - System status
		endpoint.New(
			endpoint.GET,
			"/api/status",
			endpoint.WithTags("Detection"),
			endpoint.WithSummary("Get system status"),
			endpoint.WithDescription("Returns whether the detection model is loaded, whether the monitoring loop is active, and the registered safety classes."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusResponse{}, "200", "Status retrieved successfully"),
			}),
		),

		// POST /api/upload_detection - Run detection on an uploaded frame
		endpoint.New(
			endpoint.POST,
			"/api/upload_detection",
			endpoint.WithTags("Detection"),
			endpoint.WithSummary("Run detection on an uploaded image"),
			endpoint.WithDescription("Accepts a multipart form with a single 'file' field, runs object detection and returns detections plus alerts for missing critical safety equipment."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DetectionReportResponse{}, "200", "Detection completed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "MISSING_FILE", Message: "No file provided"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "DECODE_FAILED", Message: "Could not decode uploaded image"}, "500", "Internal Server Error"),
			}),
		),

		// GET /health - Health check
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Health check"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is healthy"),
			}),
		),

		// GET /ready - Readiness check
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness check"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is ready"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
