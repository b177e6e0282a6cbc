package handler

import (
	"bytes"
	"context"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/orbital-guard/sentinel/internal/domain"
	"github.com/orbital-guard/sentinel/internal/metrics"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

// DetectionEngine runs inference over an encoded image.
type DetectionEngine interface {
	Detect(ctx context.Context, imageBytes []byte) []domain.Detection
	Loaded() bool
}

// AlertGenerator derives alerts from a detection set.
type AlertGenerator interface {
	Generate(detections []domain.Detection) []domain.Alert
}

// SessionReader exposes whether the monitoring loop is active.
type SessionReader interface {
	Active() bool
}

// ClassInfo exposes the registered object classes.
type ClassInfo interface {
	TotalClasses() int
	Critical() []string
}

// DetectionHandler handles detection-related requests
type DetectionHandler struct {
	engine  DetectionEngine
	alerts  AlertGenerator
	session SessionReader
	classes ClassInfo
	logger  *slog.Logger
}

// NewDetectionHandler creates a new DetectionHandler instance
func NewDetectionHandler(engine DetectionEngine, alerts AlertGenerator, session SessionReader, classes ClassInfo, logger *slog.Logger) *DetectionHandler {
	return &DetectionHandler{
		engine:  engine,
		alerts:  alerts,
		session: session,
		classes: classes,
		logger:  logger,
	}
}

// Status GET /api/status - report system status
func (h *DetectionHandler) Status(c *fiber.Ctx) error {
	return c.JSON(domain.SystemStatus{
		Operational:     true,
		ModelLoaded:     h.engine.Loaded(),
		DetectionActive: h.session.Active(),
		TotalClasses:    h.classes.TotalClasses(),
		CriticalObjects: len(h.classes.Critical()),
	})
}

// Upload POST /api/upload_detection - run detection on an uploaded frame
func (h *DetectionHandler) Upload(c *fiber.Ctx) error {
	metrics.UploadRequests.Inc()

	imageBytes, err := extractImage(c)
	if err != nil {
		return err
	}

	// Reject payloads that no decoder recognizes before touching the engine.
	if _, _, err := image.DecodeConfig(bytes.NewReader(imageBytes)); err != nil {
		return domain.ErrDecodeFailed.WithError(err)
	}

	detections := h.engine.Detect(c.Context(), imageBytes)
	alerts := h.alerts.Generate(detections)

	h.logger.Info("processed uploaded frame",
		"detections", len(detections),
		"alerts", len(alerts),
	)

	return c.JSON(domain.DetectionReport{
		Detections: detections,
		Alerts:     alerts,
		Timestamp:  time.Now().Format(domain.TimestampLayout),
	})
}

// extractImage extracts the uploaded file bytes from the multipart form
func extractImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, domain.ErrMissingFile.WithError(err)
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return nil, domain.ErrDecodeFailed.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrDecodeFailed.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrDecodeFailed.WithError(err)
	}

	return imageBytes, nil
}
