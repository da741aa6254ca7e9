package engine

import (
	"fmt"
	"time"

	"github.com/lowvis/magnifier/internal/track"
)

// Controller is the external mutation surface consumed by the MCP
// control server and, eventually, hotkey handlers. Methods are safe to
// call from any goroutine: they post commands that the tick loop
// applies, keeping tracker state single-goroutine.
type Controller interface {
	Status() Status
	SetZoom(zoom float32)
	StepZoom(delta float32)
	SetMode(mode string) error
	CycleMode()
	ToggleInvert()
	ShowBadge(text string, d time.Duration)
	ShowTime()
	RestoreCenter()
	CenterOnCaret()
	SwapMonitors()
}

var _ Controller = (*Engine)(nil)

// Status returns the latest published snapshot.
func (e *Engine) Status() Status {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	return e.status
}

// post hands a command to the tick loop. Commands are dropped (with a
// log entry) if the loop has fallen 16 commands behind, rather than
// blocking a control-surface caller.
func (e *Engine) post(cmd func(now time.Time)) {
	select {
	case e.cmds <- cmd:
	default:
		e.log.Warn("command dropped, tick loop busy")
	}
}

// SetZoom sets an absolute zoom factor, clamped to the valid range.
func (e *Engine) SetZoom(zoom float32) {
	e.post(func(now time.Time) {
		e.applyZoom(zoom, now)
	})
}

// StepZoom adjusts zoom by delta (use ±track.ZoomStep for one notch).
func (e *Engine) StepZoom(delta float32) {
	e.post(func(now time.Time) {
		e.applyZoom(e.tracker.Zoom()+delta, now)
	})
}

func (e *Engine) applyZoom(zoom float32, now time.Time) {
	before := e.tracker.Zoom()
	e.tracker.SetZoom(zoom)
	after := e.tracker.Zoom()
	if before == after {
		return
	}
	e.cfgDirty = true
	e.comp.SetStatusBadge(fmt.Sprintf("Zoom %.2fx", after), BadgeDuration, now)
	e.log.Info("zoom changed", "zoom", after)
}

// SetMode switches to a named tracking mode.
func (e *Engine) SetMode(mode string) error {
	m := track.ParseMode(mode)
	e.post(func(now time.Time) {
		e.applyMode(m, now)
	})
	return nil
}

// CycleMode advances Auto -> Caret -> Mouse -> Focus -> Manual -> Auto.
func (e *Engine) CycleMode() {
	e.post(func(now time.Time) {
		e.applyMode(e.tracker.Mode().Next(), now)
	})
}

func (e *Engine) applyMode(m track.Mode, now time.Time) {
	e.tracker.SetMode(m)
	e.cfgDirty = true
	e.comp.SetStatusBadge(m.String(), BadgeDuration, now)
	e.log.Info("tracking mode changed", "mode", m.String())
}

// ToggleInvert flips color inversion.
func (e *Engine) ToggleInvert() {
	e.post(func(now time.Time) {
		inverted := !e.tracker.Invert()
		e.tracker.SetInvert(inverted)
		e.cfgDirty = true
		label := "Invert off"
		if inverted {
			label = "Invert on"
		}
		e.comp.SetStatusBadge(label, BadgeDuration, now)
	})
}

// ShowBadge displays an arbitrary status badge.
func (e *Engine) ShowBadge(text string, d time.Duration) {
	if d <= 0 {
		d = BadgeDuration
	}
	e.post(func(now time.Time) {
		e.comp.SetStatusBadge(text, d, now)
	})
}

// ShowTime displays the current wall-clock time as a badge.
func (e *Engine) ShowTime() {
	e.post(func(now time.Time) {
		e.comp.SetStatusBadge(now.Format("15:04"), BadgeDuration, now)
	})
}

// RestoreCenter swaps back to the center saved before the last large
// jump.
func (e *Engine) RestoreCenter() {
	e.post(func(now time.Time) {
		if !e.tracker.RestorePrevious(now) {
			e.log.Debug("no previous center to restore")
		}
	})
}

// CenterOnCaret recenters on the last caret position immediately.
func (e *Engine) CenterOnCaret() {
	e.post(func(now time.Time) {
		e.tracker.CenterOnCaret(now)
	})
}

// SwapMonitors exchanges the source and destination monitors,
// rebuilding the capture session and re-attaching the presenter.
func (e *Engine) SwapMonitors() {
	e.post(func(now time.Time) {
		e.source, e.dest = e.dest, e.source
		e.tracker.SetSourceMonitor(e.source)
		if err := e.cap.Initialize(e.source); err != nil {
			e.log.Error("capture re-init after swap failed", "error", err)
		}
		if err := e.comp.Attach(e.dest); err != nil {
			e.log.Error("presenter re-attach after swap failed", "error", err)
		}
		e.cfgDirty = true
		e.comp.SetStatusBadge("Monitors swapped", BadgeDuration, now)
		e.log.Info("monitors swapped", "source", e.source.ID, "dest", e.dest.ID)
	})
}
