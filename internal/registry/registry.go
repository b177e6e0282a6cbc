// Package registry holds the static safety-class configuration: detector
// class ids, canonical object names, display labels, the critical-object
// list and the confidence floor. The registry never changes after
// construction and is safe for concurrent reads.
package registry

import (
	"fmt"
	"sort"
)

// ClassDefinition maps a detector class id to a canonical object name and
// an optional human-readable display name.
type ClassDefinition struct {
	ID            int
	CanonicalName string
	DisplayName   string
}

type Registry struct {
	names    map[int]string
	display  map[string]string
	ids      []int
	critical []string
	floor    float64
}

// New builds a registry from class definitions, an ordered critical-object
// list and a confidence floor. Display names default to the canonical name.
func New(defs []ClassDefinition, critical []string, floor float64) *Registry {
	r := &Registry{
		names:    make(map[int]string, len(defs)),
		display:  make(map[string]string, len(defs)),
		ids:      make([]int, 0, len(defs)),
		critical: append([]string(nil), critical...),
		floor:    floor,
	}

	for _, def := range defs {
		r.names[def.ID] = def.CanonicalName
		r.ids = append(r.ids, def.ID)
		if def.DisplayName != "" {
			r.display[def.CanonicalName] = def.DisplayName
		}
	}
	sort.Ints(r.ids)

	return r
}

// Default returns the shipped station safety configuration.
func Default() *Registry {
	return New(
		[]ClassDefinition{
			{ID: 0, CanonicalName: "OxygenTank", DisplayName: "🫁 Oxygen Tank"},
			{ID: 1, CanonicalName: "NitrogenTank", DisplayName: "🧪 Nitrogen Tank"},
			{ID: 2, CanonicalName: "FirstAidBox", DisplayName: "🩹 First Aid Box"},
			{ID: 3, CanonicalName: "FireAlarm", DisplayName: "🚨 Fire Alarm"},
			{ID: 4, CanonicalName: "SafetySwitchPanel", DisplayName: "⚡ Safety Switch Panel"},
			{ID: 5, CanonicalName: "EmergencyPhone", DisplayName: "📞 Emergency Phone"},
			{ID: 6, CanonicalName: "FireExtinguisher", DisplayName: "🧯 Fire Extinguisher"},
		},
		[]string{"OxygenTank", "FirstAidBox", "FireAlarm", "EmergencyPhone", "FireExtinguisher"},
		0.25,
	)
}

// Name returns the canonical name for a class id. Unmapped ids yield a
// synthesized Unknown_<id> name; lookup never fails.
func (r *Registry) Name(id int) string {
	if name, ok := r.names[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown_%d", id)
}

// DisplayName returns the display label for a canonical name, defaulting
// to the canonical name itself.
func (r *Registry) DisplayName(canonical string) string {
	if display, ok := r.display[canonical]; ok {
		return display
	}
	return canonical
}

// ID returns the class id for a canonical name, or false when the name is
// not registered.
func (r *Registry) ID(canonical string) (int, bool) {
	for id, name := range r.names {
		if name == canonical {
			return id, true
		}
	}
	return 0, false
}

// Critical returns the configured critical-object list in order.
func (r *Registry) Critical() []string {
	return append([]string(nil), r.critical...)
}

// ConfidenceFloor is the minimum detector confidence for a box to be
// reported.
func (r *Registry) ConfidenceFloor() float64 {
	return r.floor
}

func (r *Registry) TotalClasses() int {
	return len(r.names)
}

// CanonicalNames returns all canonical names ordered by class id.
func (r *Registry) CanonicalNames() []string {
	names := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		names = append(names, r.names[id])
	}
	return names
}

// DisplayNames returns all display labels ordered by class id.
func (r *Registry) DisplayNames() []string {
	names := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		names = append(names, r.DisplayName(r.names[id]))
	}
	return names
}
