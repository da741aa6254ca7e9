// Package track fuses the asynchronous positional signals (caret,
// pointer, focus rectangle, clicks) into one authoritative ViewState
// per tick, applying the tracking-mode policy, temporal smoothing,
// click-rate limiting and the application-specific anchor overrides.
package track

import (
	"image"
	"time"

	"github.com/lowvis/magnifier/internal/geometry"
	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/platform"
)

// Tracking constants. Timeouts are per-signal freshness windows; a
// signal older than its window no longer steers the viewport.
const (
	CaretTimeout   = 600 * time.Millisecond
	PointerTimeout = 160 * time.Millisecond
	FocusTimeout   = 900 * time.Millisecond

	// DeadZoneRadius suppresses smoothing steps for near-stationary
	// targets so the view does not jitter around a resting signal.
	DeadZoneRadius float32 = 16.0

	// SmoothingFactor is the fraction of the remaining distance the
	// center moves toward a non-caret target each tick.
	SmoothingFactor float32 = 0.45

	// CaretOffsetX shifts a caret target right so the caret's own
	// width stays inside the view.
	CaretOffsetX float32 = 4.0

	// ClickLimitPerSecond caps center motion around the latest click.
	ClickLimitPerSecond float32 = 50.0

	// ClickLockDuration bounds how long a click anchors the viewport
	// when the pointer never moves again.
	ClickLockDuration = 5 * time.Second

	PrevCenterThreshold float32 = 160.0
	PrevCenterCooldown          = 500 * time.Millisecond

	AnchorHoldThreshold = 1000 * time.Millisecond
	AnchorReleaseGrace  = 500 * time.Millisecond

	// Messenger reply strip: bottom 10% of the source monitor with the
	// left quarter cut off; released when the pointer moves more than
	// ReplyReleaseDist from the arming click.
	ReplyStripFraction = 0.10
	ReplyLeftCut       = 0.25
	ReplyReleaseDist   = 10

	MinZoom  float32 = 1.0
	MaxZoom  float32 = 12.0
	ZoomStep float32 = 0.25
)

// ViewState fully describes one frame's rendering. It is the sole
// handoff between tracker and compositor; no hidden state may affect
// the output.
type ViewState struct {
	SourceRegion  image.Rectangle // crop window in source-frame pixels
	Zoom          float32
	CursorVisible bool
	Cursor        geometry.Point // source-frame space
	InvertColors  bool
}

// Options configures the tracker's application-specific behavior.
type Options struct {
	// TerminalPatterns match the foreground window for the bottom-left
	// pin (process name, title or class substrings).
	TerminalPatterns []string
	// MessengerPatterns match the foreground window for the reply-strip
	// clamp.
	MessengerPatterns []string
}

// DefaultOptions mirror the applications the magnifier historically
// special-cases.
func DefaultOptions() Options {
	return Options{
		TerminalPatterns:  []string{"putty"},
		MessengerPatterns: []string{"whatsapp", "telegram"},
	}
}

// Tracker resolves the viewport once per tick. All methods are called
// from the tick goroutine only; the cross-goroutine boundary is the
// Signals cell set.
type Tracker struct {
	signals *Signals
	fg      platform.ForegroundReader
	opts    Options

	mode   Mode
	zoom   float32
	invert bool

	src monitor.Descriptor

	center centerState
	click  clickLock
	anchor anchorState
	reply  replyZone

	// Auto-mode arbitration: a pointer update steers only when newer
	// than the last caret-driven center adoption, and winning zeroes
	// the adoption stamp so caret priority needs a fresh caret signal.
	lastCaretAdopt time.Time

	lastClickSeq   uint64
	lastPointerPos image.Point
	havePointerPos bool
}

// New creates a Tracker reading from signals. fg may be nil, disabling
// the anchor overrides.
func New(signals *Signals, fg platform.ForegroundReader, opts Options) *Tracker {
	return &Tracker{
		signals: signals,
		fg:      fg,
		opts:    opts,
		mode:    ModeAuto,
		zoom:    2.0,
	}
}

// SetSourceMonitor updates the screen-to-source conversion basis and
// drops center history, which is meaningless across monitors.
func (t *Tracker) SetSourceMonitor(src monitor.Descriptor) {
	t.src = src
	t.center.clear()
	t.click = clickLock{}
	t.reply.release()
}

// Mode returns the active tracking mode.
func (t *Tracker) Mode() Mode { return t.mode }

// SetMode switches the tracking policy.
func (t *Tracker) SetMode(m Mode) { t.mode = m }

// Zoom returns the current zoom factor.
func (t *Tracker) Zoom() float32 { return t.zoom }

// SetZoom clamps and stores the zoom factor.
func (t *Tracker) SetZoom(z float32) {
	t.zoom = geometry.Clamp(z, MinZoom, MaxZoom)
}

// SetInvert toggles color inversion in the produced ViewState.
func (t *Tracker) SetInvert(invert bool) { t.invert = invert }

// Invert returns the inversion flag.
func (t *Tracker) Invert() bool { return t.invert }

// RestorePrevious swaps back to the center saved before the last large
// jump. Returns false when no history exists.
func (t *Tracker) RestorePrevious(now time.Time) bool {
	return t.center.restore(now)
}

// CenterOnCaret snaps the center to the latest caret sample regardless
// of freshness, bypassing smoothing and the click lock. Used by the
// recenter gesture. No-op in Manual mode or without a caret sample
// inside the source monitor.
func (t *Tracker) CenterOnCaret(now time.Time) bool {
	if t.mode == ModeManual {
		return false
	}
	s := t.signals.caretSample()
	if s == nil {
		return false
	}
	p, ok := t.screenToSource(s.pt)
	if !ok {
		return false
	}
	p.X += CaretOffsetX
	t.center.set(p, now)
	t.lastCaretAdopt = now
	return true
}

// screenToSource converts a virtual-desktop point into source-frame
// pixels, rejecting points outside the source monitor.
func (t *Tracker) screenToSource(pt image.Point) (geometry.Point, bool) {
	b := t.src.Bounds
	if b.Empty() || !pt.In(b) {
		return geometry.Point{}, false
	}
	return geometry.Point{
		X: float32(float64(pt.X-b.Min.X) * t.src.Scale),
		Y: float32(float64(pt.Y-b.Min.Y) * t.src.Scale),
	}, true
}

// Resolve computes the ViewState for this tick from the latest signals.
// frameW/frameH are the captured frame dimensions in pixels. With no
// fresh signal and no active anchor the previous center is held.
func (t *Tracker) Resolve(now time.Time, frameW, frameH float32) ViewState {
	state := ViewState{Zoom: t.zoom, InvertColors: t.invert}
	if frameW <= 0 || frameH <= 0 {
		return state
	}

	t.drainEvents(now)
	t.anchor.observe(t.signals.anchorSample())
	if !t.anchor.keyDown && !now.Before(t.anchor.graceUntil) {
		t.anchor.hasAnchor = false
	}
	suppressed := t.anchor.suppressed(now)

	if s := t.signals.pointerSample(); s != nil {
		if cursor, ok := t.screenToSource(s.pt); ok {
			state.CursorVisible = true
			state.Cursor = cursor
		}
	}

	target, haveTarget, caretTarget := t.selectTarget(now, suppressed, frameW, frameH)

	viewW := frameW / t.zoom
	viewH := frameH / t.zoom
	if viewW > frameW {
		viewW = frameW
	}
	if viewH > frameH {
		viewH = frameH
	}
	halfW, halfH := viewW/2, viewH/2

	t.refreshTerminalAnchor(now)

	aligned := false
	if t.anchor.aligned && t.anchor.hasAnchor {
		left := geometry.Clamp(t.anchor.anchor.X, 0, frameW-viewW)
		bottom := geometry.Clamp(t.anchor.anchor.Y, viewH, frameH)
		t.center.current = geometry.Point{X: left + halfW, Y: bottom - halfH}
		t.center.has = true
		t.reply.release()
		aligned = true
	}

	if !aligned {
		switch {
		case !t.center.has:
			t.snapTo(target, now, false)
		case haveTarget && caretTarget:
			t.snapTo(target, now, true)
		case haveTarget:
			dist := t.center.current.Dist(target)
			if dist > DeadZoneRadius {
				t.center.maybeRecord(target, now)
				next := geometry.Point{
					X: t.center.current.X + (target.X-t.center.current.X)*SmoothingFactor,
					Y: t.center.current.Y + (target.Y-t.center.current.Y)*SmoothingFactor,
				}
				t.center.current = t.click.limit(next, now)
			}
		}
	}

	if t.reply.active {
		minX := max32(t.reply.zone.Left, halfW)
		maxX := min32(t.reply.zone.Right, frameW-halfW)
		minY := max32(t.reply.zone.Top, halfH)
		maxY := min32(t.reply.zone.Bottom, frameH-halfH)
		if minX <= maxX && minY <= maxY {
			t.center.current.X = geometry.Clamp(t.center.current.X, minX, maxX)
			t.center.current.Y = geometry.Clamp(t.center.current.Y, minY, maxY)
		} else {
			t.reply.release()
		}
	}

	region, clamped := geometry.ViewRect(t.center.current, viewW, viewH, frameW, frameH)
	t.center.current = clamped
	state.SourceRegion = region.ToImageRect()
	return state
}

// snapTo adopts a target directly. Caret snaps ignore the click lock
// so text-following stays crisp.
func (t *Tracker) snapTo(target geometry.Point, now time.Time, ignoreClickLimit bool) {
	if !ignoreClickLimit {
		target = t.click.limit(target, now)
	}
	t.center.set(target, now)
}

// drainEvents applies click and pointer-movement transitions observed
// since the previous tick.
func (t *Tracker) drainEvents(now time.Time) {
	if s := t.signals.clickSample(); s != nil && s.seq != t.lastClickSeq {
		t.lastClickSeq = s.seq
		t.adoptClick(s)
	}
	if s := t.signals.pointerSample(); s != nil {
		if t.havePointerPos && s.pt != t.lastPointerPos {
			t.click.active = false
			t.reply.pointerMoved(s.pt)
		}
		t.lastPointerPos = s.pt
		t.havePointerPos = true
	}
}

// adoptClick arms the click lock and, when the click lands in the
// messenger reply strip, the reply-zone clamp.
func (t *Tracker) adoptClick(s *pointSample) {
	src, hasSrc := t.screenToSource(s.pt)
	t.click.arm(s.pt, src, hasSrc, s.at)
	t.reply.release()
	// The click itself repositions the pointer; do not read that as
	// pointer movement next tick.
	t.lastPointerPos = s.pt
	t.havePointerPos = true

	if t.fg == nil {
		return
	}
	fg, ok := t.fg.Foreground()
	if !ok || !fg.MatchesPatterns(t.opts.MessengerPatterns) {
		return
	}
	b := t.src.Bounds
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return
	}
	stripH := int(float64(b.Dy())*ReplyStripFraction + 0.5)
	if stripH < 1 {
		stripH = 1
	}
	stripTop := b.Max.Y - stripH
	if stripTop < b.Min.Y {
		stripTop = b.Min.Y
	}
	if s.pt.Y < stripTop || s.pt.Y >= b.Max.Y || s.pt.X < b.Min.X || s.pt.X >= b.Max.X {
		return
	}
	left := b.Min.X + int(float64(b.Dx())*ReplyLeftCut+0.5)
	if left >= b.Max.X {
		left = b.Max.X - 1
	}
	tl, okTL := t.screenToSource(image.Pt(left, stripTop))
	br, okBR := t.screenToSource(image.Pt(b.Max.X-1, b.Max.Y-1))
	if !okTL || !okBR {
		return
	}
	t.reply = replyZone{
		active: true,
		zone:   geometry.Rect{Left: tl.X, Top: tl.Y, Right: br.X, Bottom: br.Y},
		anchor: s.pt,
	}
}

// selectTarget picks this tick's steering target under the mode policy.
func (t *Tracker) selectTarget(now time.Time, suppressed bool, frameW, frameH float32) (target geometry.Point, have, caret bool) {
	target = geometry.Point{X: frameW / 2, Y: frameH / 2}

	useCaret := func() bool {
		if suppressed {
			return false
		}
		s := t.signals.caretSample()
		if s == nil || now.Sub(s.at) > CaretTimeout {
			return false
		}
		p, ok := t.screenToSource(s.pt)
		if !ok {
			return false
		}
		p.X += CaretOffsetX
		target = p
		have, caret = true, true
		t.lastCaretAdopt = now
		return true
	}

	useMouse := func() bool {
		if suppressed {
			return false
		}
		s := t.signals.pointerSample()
		if s == nil || now.Sub(s.at) > PointerTimeout {
			return false
		}
		if t.mode == ModeAuto && !s.at.After(t.lastCaretAdopt) {
			return false
		}
		p, ok := t.screenToSource(s.pt)
		if !ok {
			return false
		}
		target = p
		have = true
		if t.mode == ModeAuto {
			t.lastCaretAdopt = time.Time{}
		}
		return true
	}

	useFocus := func() bool {
		if suppressed {
			return false
		}
		s := t.signals.focusSample()
		if s == nil || now.Sub(s.at) > FocusTimeout {
			return false
		}
		c := s.rect.Min.Add(image.Pt(s.rect.Dx()/2, s.rect.Dy()/2))
		p, ok := t.screenToSource(c)
		if !ok {
			return false
		}
		target = p
		have = true
		return true
	}

	switch t.mode {
	case ModeAuto:
		if !useCaret() {
			if !useMouse() {
				useFocus()
			}
		}
	case ModeCaret:
		useCaret()
	case ModeMouse:
		useMouse()
	case ModeFocus:
		useFocus()
	case ModeManual:
		// center never changes automatically
	}
	return target, have, caret
}

// refreshTerminalAnchor re-reads the foreground window's bottom-left
// while the anchor key is engaged and promotes the pin once the hold
// threshold passes.
func (t *Tracker) refreshTerminalAnchor(now time.Time) {
	if t.fg == nil {
		return
	}
	if t.anchor.keyDown || t.anchor.aligned {
		if fg, ok := t.fg.Foreground(); ok && fg.MatchesPatterns(t.opts.TerminalPatterns) {
			bl := image.Pt(fg.Bounds.Min.X, maxInt(fg.Bounds.Min.Y, fg.Bounds.Max.Y-1))
			if p, ok := t.screenToSource(bl); ok {
				t.anchor.anchor = p
				t.anchor.hasAnchor = true
			}
		}
	}
	if t.anchor.keyDown {
		if !t.anchor.aligned && now.Sub(t.anchor.pressedAt) >= AnchorHoldThreshold && t.anchor.hasAnchor {
			t.anchor.aligned = true
		}
	} else if t.anchor.aligned {
		t.anchor.aligned = false
	}
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
