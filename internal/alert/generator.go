// Package alert synthesizes critical-object alerts from detection
// results.
package alert

import (
	"fmt"
	"time"

	"github.com/orbital-guard/sentinel/internal/domain"
	"github.com/orbital-guard/sentinel/internal/metrics"
	"github.com/orbital-guard/sentinel/internal/registry"
)

// Generator emits one Alert per critical object absent from a detection
// result. Every call is independent and stateless: the same missing
// object produces a fresh alert with a fresh timestamp-derived id each
// cycle, and de-duplication is deliberately left to consumers.
type Generator struct {
	reg *registry.Registry
	now func() time.Time
}

func NewGenerator(reg *registry.Registry) *Generator {
	return &Generator{
		reg: reg,
		now: time.Now,
	}
}

// Generate returns alerts for critical objects missing from detections,
// in the configured critical-list order.
func (g *Generator) Generate(detections []domain.Detection) []domain.Alert {
	present := make(map[string]struct{}, len(detections))
	for _, d := range detections {
		present[d.Object] = struct{}{}
	}

	alerts := make([]domain.Alert, 0)
	for _, object := range g.reg.Critical() {
		if _, ok := present[object]; ok {
			continue
		}

		now := g.now()
		alerts = append(alerts, domain.Alert{
			ID:        fmt.Sprintf("alert_%s_%d", object, now.Unix()),
			Message:   fmt.Sprintf("%s not detected!", g.reg.DisplayName(object)),
			Severity:  domain.SeverityCritical,
			Timestamp: now.Format(domain.TimestampLayout),
			Object:    object,
		})
	}

	metrics.AlertsGenerated.Add(float64(len(alerts)))
	return alerts
}
