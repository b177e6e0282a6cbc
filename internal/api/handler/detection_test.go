package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-guard/sentinel/internal/api/middleware"
	"github.com/orbital-guard/sentinel/internal/domain"
)

// stubEngine returns a fixed detection set
type stubEngine struct {
	loaded     bool
	detections []domain.Detection
	called     bool
}

func (s *stubEngine) Detect(ctx context.Context, imageBytes []byte) []domain.Detection {
	s.called = true
	return s.detections
}

func (s *stubEngine) Loaded() bool { return s.loaded }

// stubAlerts returns a fixed alert set
type stubAlerts struct {
	alerts []domain.Alert
}

func (s *stubAlerts) Generate(detections []domain.Detection) []domain.Alert {
	return s.alerts
}

// stubSession reports a fixed active flag
type stubSession struct {
	active bool
}

func (s *stubSession) Active() bool { return s.active }

// stubClasses reports fixed class metadata
type stubClasses struct{}

func (s *stubClasses) TotalClasses() int { return 7 }

func (s *stubClasses) Critical() []string {
	return []string{"OxygenTank", "FirstAidBox", "FireAlarm", "EmergencyPhone", "FireExtinguisher"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(h *DetectionHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
	app.Get("/api/status", h.Status)
	app.Post("/api/upload_detection", h.Upload)
	return app
}

// pngBytes encodes a small solid image as PNG
func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartBody builds a multipart form with a single file field
func multipartBody(t *testing.T, fieldName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(fieldName, "frame.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestDetectionHandler_Status(t *testing.T) {
	engine := &stubEngine{loaded: true}
	handler := NewDetectionHandler(engine, &stubAlerts{}, &stubSession{active: true}, &stubClasses{}, testLogger())
	app := newTestApp(handler)

	req := httptest.NewRequest("GET", "/api/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var status domain.SystemStatus
	require.NoError(t, json.Unmarshal(body, &status))

	assert.True(t, status.Operational)
	assert.True(t, status.ModelLoaded)
	assert.True(t, status.DetectionActive)
	assert.Equal(t, 7, status.TotalClasses)
	assert.Equal(t, 5, status.CriticalObjects)

	// critical_objects is the size of the critical set on the wire, not
	// the names.
	assert.Contains(t, string(body), `"critical_objects":5`)
}

func TestDetectionHandler_StatusModelNotLoaded(t *testing.T) {
	engine := &stubEngine{loaded: false}
	handler := NewDetectionHandler(engine, &stubAlerts{}, &stubSession{active: false}, &stubClasses{}, testLogger())
	app := newTestApp(handler)

	req := httptest.NewRequest("GET", "/api/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var status domain.SystemStatus
	require.NoError(t, json.Unmarshal(body, &status))

	assert.True(t, status.Operational)
	assert.False(t, status.ModelLoaded)
	assert.False(t, status.DetectionActive)
}

func TestDetectionHandler_UploadMissingFile(t *testing.T) {
	engine := &stubEngine{loaded: true}
	handler := NewDetectionHandler(engine, &stubAlerts{}, &stubSession{}, &stubClasses{}, testLogger())
	app := newTestApp(handler)

	body, contentType := multipartBody(t, "attachment", pngBytes(t))
	req := httptest.NewRequest("POST", "/api/upload_detection", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	respBody, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(respBody, &errResp))
	assert.Equal(t, "MISSING_FILE", errResp.Error.Code)
	assert.Equal(t, "No file provided", errResp.Error.Message)
	assert.False(t, engine.called, "engine should not run without a file")
}

func TestDetectionHandler_UploadUndecodableImage(t *testing.T) {
	engine := &stubEngine{loaded: true}
	handler := NewDetectionHandler(engine, &stubAlerts{}, &stubSession{}, &stubClasses{}, testLogger())
	app := newTestApp(handler)

	body, contentType := multipartBody(t, "file", []byte("definitely not an image"))
	req := httptest.NewRequest("POST", "/api/upload_detection", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	respBody, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(respBody, &errResp))
	assert.Equal(t, "DECODE_FAILED", errResp.Error.Code)
	assert.False(t, engine.called, "engine should not see an undecodable payload")
}

func TestDetectionHandler_UploadSuccess(t *testing.T) {
	engine := &stubEngine{
		loaded: true,
		detections: []domain.Detection{
			{
				Object:      "FireExtinguisher",
				DisplayName: "🧯 Fire Extinguisher",
				Confidence:  0.95,
				BBox:        domain.BBox{X: 100, Y: 150, Width: 80, Height: 120},
				Status:      domain.StatusDetected,
			},
		},
	}
	alerts := &stubAlerts{
		alerts: []domain.Alert{
			{
				ID:       "alert_OxygenTank_1700000000",
				Message:  "🛢️ Oxygen Tank not detected!",
				Severity: domain.SeverityCritical,
				Object:   "OxygenTank",
			},
		},
	}
	handler := NewDetectionHandler(engine, alerts, &stubSession{}, &stubClasses{}, testLogger())
	app := newTestApp(handler)

	body, contentType := multipartBody(t, "file", pngBytes(t))
	req := httptest.NewRequest("POST", "/api/upload_detection", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	respBody, _ := io.ReadAll(resp.Body)
	var report domain.DetectionReport
	require.NoError(t, json.Unmarshal(respBody, &report))

	require.Len(t, report.Detections, 1)
	assert.Equal(t, "FireExtinguisher", report.Detections[0].Object)
	assert.Equal(t, domain.StatusDetected, report.Detections[0].Status)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, "OxygenTank", report.Alerts[0].Object)
	assert.NotEmpty(t, report.Timestamp)

	// Wire format carries confidence as a quoted two-decimal string.
	assert.Contains(t, string(respBody), `"confidence":"0.95"`)
}

func TestDetectionHandler_UploadEmptyFile(t *testing.T) {
	engine := &stubEngine{loaded: true}
	handler := NewDetectionHandler(engine, &stubAlerts{}, &stubSession{}, &stubClasses{}, testLogger())
	app := newTestApp(handler)

	body, contentType := multipartBody(t, "file", nil)
	req := httptest.NewRequest("POST", "/api/upload_detection", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.False(t, engine.called)
}
