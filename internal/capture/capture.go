// Package capture owns the screen-mirroring session for the source
// monitor and the recovery policy when the session is invalidated.
package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/platform"
)

// FrameTimeout is how long one acquire waits for a new frame before
// reporting "nothing new". Matches the tick cadence.
const FrameTimeout = 16 * time.Millisecond

// Frame is one captured desktop image. It is owned by the Source and
// only valid until the next AcquireFrame or Shutdown; callers must not
// retain it across ticks.
type Frame struct {
	Img    *image.RGBA
	Width  int
	Height int
	Seq    uint64
}

// Source wraps a platform capture backend with the reinitialize
// state machine: a timeout is transparent, an invalidated session is
// flagged and recovered on a later tick, any other failure is logged
// and also forces reinitialization.
type Source struct {
	backend platform.CaptureBackend
	log     *slog.Logger

	src       monitor.Descriptor
	open      bool
	needsInit bool
	seq       uint64
}

// NewSource creates a Source over the given backend.
func NewSource(backend platform.CaptureBackend, log *slog.Logger) *Source {
	return &Source{backend: backend, log: log}
}

// Initialize opens a mirroring session for the source monitor. The
// descriptor is remembered so Reinitialize can rebuild the session
// without re-selection.
func (s *Source) Initialize(src monitor.Descriptor) error {
	s.Shutdown()
	s.src = src
	if err := s.backend.Open(src); err != nil {
		return fmt.Errorf("open capture session for %s: %w", src.ID, err)
	}
	s.open = true
	s.needsInit = false
	s.log.Info("capture session opened", "monitor", src.ID, "bounds", src.Bounds.String())
	return nil
}

// AcquireFrame polls for the next frame. A nil frame with nil error
// means "no new frame this tick" (timeout, or a failure that set the
// reinitialize flag). The previous frame is released implicitly by the
// backend before the next one is requested.
func (s *Source) AcquireFrame() (*Frame, error) {
	if !s.open {
		return nil, nil
	}
	img, err := s.backend.Acquire(FrameTimeout)
	if err != nil {
		switch {
		case errors.Is(err, platform.ErrTimeout):
			return nil, nil
		case errors.Is(err, platform.ErrAccessLost):
			s.log.Warn("capture session invalidated", "monitor", s.src.ID)
			s.teardown()
		default:
			s.log.Error("frame acquire failed", "monitor", s.src.ID, "error", err)
			s.teardown()
		}
		return nil, nil
	}
	if img == nil {
		return nil, nil
	}
	s.seq++
	b := img.Bounds()
	return &Frame{Img: img, Width: b.Dx(), Height: b.Dy(), Seq: s.seq}, nil
}

// NeedsReinitialize reports whether the session must be rebuilt before
// frames can flow again.
func (s *Source) NeedsReinitialize() bool { return s.needsInit }

// Reinitialize rebuilds the session from the remembered monitor. On
// failure the flag stays set so a later tick retries.
func (s *Source) Reinitialize() error {
	if s.src.ID == "" {
		return fmt.Errorf("reinitialize before initialize")
	}
	if s.open {
		s.teardown()
	}
	if err := s.backend.Open(s.src); err != nil {
		s.needsInit = true
		return fmt.Errorf("reopen capture session for %s: %w", s.src.ID, err)
	}
	s.open = true
	s.needsInit = false
	s.log.Info("capture session reinitialized", "monitor", s.src.ID)
	return nil
}

// Monitor returns the descriptor the session was initialized for.
func (s *Source) Monitor() monitor.Descriptor { return s.src }

// Seq returns the sequence number of the most recent frame.
func (s *Source) Seq() uint64 { return s.seq }

// Shutdown releases the active frame (if any) and closes the session.
// Part of the single teardown path: it is called on normal stop,
// capture error and process exit alike.
func (s *Source) Shutdown() {
	if s.open {
		if err := s.backend.Close(); err != nil {
			s.log.Warn("capture close failed", "error", err)
		}
		s.open = false
	}
	s.needsInit = false
}

// teardown closes the session and marks it for reinitialization.
func (s *Source) teardown() {
	if s.open {
		if err := s.backend.Close(); err != nil {
			s.log.Warn("capture close failed", "error", err)
		}
		s.open = false
	}
	s.needsInit = true
}
