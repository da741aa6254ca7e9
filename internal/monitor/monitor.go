// Package monitor models the attached displays and the source/
// destination pair selection.
package monitor

import (
	"fmt"
	"image"
	"strings"
)

// Descriptor is an immutable snapshot of one physical display. It is
// refreshed wholesale on topology change, never mutated in place.
type Descriptor struct {
	// ID is the platform device name, stable across refreshes of the
	// same topology (e.g. `\\.\DISPLAY1`).
	ID       string
	Name     string
	Bounds   image.Rectangle // virtual-desktop coordinates
	WorkArea image.Rectangle
	// Scale converts Bounds coordinates into captured-frame pixels.
	// 1.0 when the backend already reports physical pixels.
	Scale   float64
	DPI     int // informational, 96 = 100%
	Primary bool
}

// SourceSize returns the captured frame dimensions for this monitor:
// physical pixels, i.e. bounds scaled by the DPI factor.
func (d Descriptor) SourceSize() (w, h int) {
	return int(float64(d.Bounds.Dx()) * d.Scale), int(float64(d.Bounds.Dy()) * d.Scale)
}

// Enumerator lists the current displays. Implemented by the platform
// provider; fakes implement it in tests.
type Enumerator interface {
	Enumerate() ([]Descriptor, error)
}

// Manager holds the current topology snapshot.
type Manager struct {
	enum     Enumerator
	monitors []Descriptor
}

// NewManager creates a Manager and performs an initial refresh.
func NewManager(enum Enumerator) (*Manager, error) {
	m := &Manager{enum: enum}
	if err := m.Refresh(); err != nil {
		return nil, err
	}
	return m, nil
}

// Refresh re-enumerates the displays, replacing the snapshot.
func (m *Manager) Refresh() error {
	monitors, err := m.enum.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerate monitors: %w", err)
	}
	m.monitors = monitors
	return nil
}

// All returns the current snapshot in enumeration order.
func (m *Manager) All() []Descriptor { return m.monitors }

// FindByID returns the monitor with the given device ID.
func (m *Manager) FindByID(id string) (Descriptor, bool) {
	for _, d := range m.monitors {
		if strings.EqualFold(d.ID, id) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Pick selects the source/destination pair. Configured IDs win when
// they resolve; otherwise the primary display is the source and the
// first non-primary display is the destination.
func (m *Manager) Pick(sourceID, destID string) (source, dest Descriptor, err error) {
	if len(m.monitors) < 2 {
		return Descriptor{}, Descriptor{}, fmt.Errorf("need at least 2 monitors, found %d", len(m.monitors))
	}

	haveSource, haveDest := false, false
	if sourceID != "" {
		source, haveSource = m.FindByID(sourceID)
	}
	if destID != "" {
		dest, haveDest = m.FindByID(destID)
	}

	if !haveSource {
		for _, d := range m.monitors {
			if d.Primary && (!haveDest || d.ID != dest.ID) {
				source, haveSource = d, true
				break
			}
		}
	}
	if !haveSource {
		source, haveSource = m.monitors[0], true
	}
	if !haveDest {
		for _, d := range m.monitors {
			if d.ID != source.ID {
				dest, haveDest = d, true
				break
			}
		}
	}
	if !haveDest || source.ID == dest.ID {
		return Descriptor{}, Descriptor{}, fmt.Errorf("cannot select distinct source and destination monitors")
	}
	return source, dest, nil
}
