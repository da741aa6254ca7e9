// Package platform defines the OS-facing interfaces consumed by the
// capture source, the compositor and the monitor manager. A concrete
// backend registers itself via NewProviderFunc in a build-tagged
// package init; everything above this layer is platform-independent.
package platform

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"strings"
	"time"

	"github.com/lowvis/magnifier/internal/monitor"
)

// Sentinel errors shared by capture backends.
var (
	// ErrTimeout means no new frame was produced within the poll
	// window. Not a failure: the caller keeps its previous output.
	ErrTimeout = errors.New("capture: frame wait timed out")

	// ErrAccessLost means the mirroring session was invalidated
	// (display mode change, GPU reset) and must be rebuilt.
	ErrAccessLost = errors.New("capture: session access lost")
)

// ErrUnsupported is returned on platforms without a registered backend.
var ErrUnsupported = fmt.Errorf("magnifier is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

// CaptureBackend owns one screen-mirroring session. At most one frame
// is checked out at a time; each Acquire implicitly releases the
// previous frame.
type CaptureBackend interface {
	// Open starts a mirroring session for the given monitor.
	Open(m monitor.Descriptor) error

	// Acquire waits up to timeout for the next frame. Returns
	// ErrTimeout when no new frame arrived and ErrAccessLost when the
	// session was invalidated. The returned image is owned by the
	// backend and only valid until the next Acquire or Close.
	Acquire(timeout time.Duration) (*image.RGBA, error)

	// Close tears down the session. Safe to call repeatedly.
	Close() error
}

// CursorState describes the current system pointer.
type CursorState struct {
	// Shape identifies the pointer glyph; the compositor only rebuilds
	// its cursor texture when this changes.
	Shape   uintptr
	Glyph   *image.RGBA
	Hotspot image.Point
	Pos     image.Point // virtual-desktop coordinates
	Visible bool
}

// CursorReader reads the current pointer shape.
type CursorReader interface {
	ReadCursor() (CursorState, error)
}

// ForegroundWindow describes the window currently receiving input.
type ForegroundWindow struct {
	Title   string
	Process string // executable path or name; pattern matching lowercases
	Class   string
	Bounds  image.Rectangle // virtual-desktop coordinates
}

// ForegroundReader looks up the foreground window for anchor matching.
type ForegroundReader interface {
	Foreground() (ForegroundWindow, bool)
}

// Presenter owns the destination window surface and shows one composed
// frame per call.
type Presenter interface {
	Attach(m monitor.Descriptor) error
	Present(img *image.RGBA) error
	Close() error
}

// LayoutReader reports the active keyboard layout identifier.
type LayoutReader interface {
	Layout() string
}

// Provider bundles all backends for the current OS.
type Provider struct {
	Capture    CaptureBackend
	Monitors   monitor.Enumerator
	Cursor     CursorReader
	Foreground ForegroundReader
	Presenter  Presenter
	Layout     LayoutReader
}

// NewProviderFunc is set by platform-specific packages via init().
var NewProviderFunc func() (*Provider, error)

// NewProvider returns the Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}

// MatchesPatterns reports whether any lowercase pattern occurs in the
// window's process name, title or class. Empty patterns never match.
func (w ForegroundWindow) MatchesPatterns(patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	fields := []string{
		strings.ToLower(w.Process),
		strings.ToLower(w.Title),
		strings.ToLower(w.Class),
	}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		for _, f := range fields {
			if f != "" && strings.Contains(f, p) {
				return true
			}
		}
	}
	return false
}
