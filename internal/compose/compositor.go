// Package compose renders one output frame per tick: the cropped and
// scaled view region, a synthesized pointer glyph and at most one text
// badge, presented through the platform presenter.
package compose

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/lowvis/magnifier/internal/capture"
	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/platform"
	"github.com/lowvis/magnifier/internal/track"
)

// BadgeBoxSize is the square texture badges are rendered into, anchored
// to the bottom-left of the output.
const BadgeBoxSize = 400

// nearestZoomThreshold switches the scaler from bilinear to nearest
// neighbor; at high zoom the blocky look reads better and costs less.
const nearestZoomThreshold float32 = 3.0

type badge struct {
	img      *image.RGBA
	expireAt time.Time
}

func (b *badge) expired(now time.Time) bool {
	return b.img == nil || !b.expireAt.After(now)
}

func (b *badge) clear() {
	b.img = nil
	b.expireAt = time.Time{}
}

// Compositor owns the destination surface and all overlay textures.
// Frames borrowed during Present are never retained.
type Compositor struct {
	presenter platform.Presenter
	cursor    platform.CursorReader
	log       *slog.Logger

	dest     monitor.Descriptor
	destW    int
	destH    int
	out      *image.RGBA
	attached bool

	// cursor glyph cache, rebuilt only when the pointer shape changes
	cursorShape uintptr
	cursorGlyph *image.RGBA
	cursorHot   image.Point

	layout badge
	status badge
}

// New creates a Compositor over the given presenter. cursor may be nil;
// the pointer overlay is then skipped.
func New(presenter platform.Presenter, cursor platform.CursorReader, log *slog.Logger) *Compositor {
	return &Compositor{presenter: presenter, cursor: cursor, log: log}
}

// Attach binds the compositor to the destination monitor and sizes the
// output surface. Called again on topology change or monitor swap.
func (c *Compositor) Attach(dest monitor.Descriptor) error {
	if err := c.presenter.Attach(dest); err != nil {
		return fmt.Errorf("attach presenter to %s: %w", dest.ID, err)
	}
	w, h := dest.SourceSize()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("destination monitor %s has empty bounds", dest.ID)
	}
	c.dest = dest
	c.destW, c.destH = w, h
	c.out = image.NewRGBA(image.Rect(0, 0, w, h))
	c.attached = true
	return nil
}

// Present composes and presents one frame. The frame is only borrowed
// for the duration of the call.
func (c *Compositor) Present(frame *capture.Frame, state track.ViewState, now time.Time) error {
	if !c.attached {
		return fmt.Errorf("present before attach")
	}
	region := state.SourceRegion.Intersect(frame.Img.Bounds())
	if region.Empty() {
		return fmt.Errorf("view region %v outside frame %v", state.SourceRegion, frame.Img.Bounds())
	}

	var scaler xdraw.Scaler = xdraw.ApproxBiLinear
	if state.Zoom >= nearestZoomThreshold {
		scaler = xdraw.NearestNeighbor
	}
	scaler.Scale(c.out, c.out.Bounds(), frame.Img, region, xdraw.Src, nil)

	if state.InvertColors {
		invert(c.out)
	}
	if state.CursorVisible {
		c.drawCursor(state, region)
	}
	c.drawBadge(now)

	return c.presenter.Present(c.out)
}

// ShowLayoutBadge displays a transient layout/overlay badge. It takes
// priority over the status badge while unexpired.
func (c *Compositor) ShowLayoutBadge(text string, d time.Duration, now time.Time) {
	img, err := renderBadge(text)
	if err != nil {
		c.log.Warn("layout badge render failed", "error", err)
		return
	}
	c.layout = badge{img: img, expireAt: now.Add(d)}
}

// SetStatusBadge displays a short-lived status badge.
func (c *Compositor) SetStatusBadge(text string, d time.Duration, now time.Time) {
	img, err := renderBadge(text)
	if err != nil {
		c.log.Warn("status badge render failed", "error", err)
		return
	}
	c.status = badge{img: img, expireAt: now.Add(d)}
}

// StatusBusyUntil reports when the active status badge expires (zero
// when none is showing). The engine uses it to sequence queued badges.
func (c *Compositor) StatusBusyUntil() time.Time {
	return c.status.expireAt
}

// Close releases the destination surface. Overlay resources are plain
// images collected with the compositor.
func (c *Compositor) Close() {
	c.layout.clear()
	c.status.clear()
	c.cursorGlyph = nil
	c.attached = false
	if err := c.presenter.Close(); err != nil {
		c.log.Warn("presenter close failed", "error", err)
	}
}

// drawCursor composites the synthesized pointer glyph. The glyph is
// rebuilt only when the platform reports a new shape; it is skipped
// when the pointer sits outside the crop.
func (c *Compositor) drawCursor(state track.ViewState, region image.Rectangle) {
	if c.cursor == nil {
		return
	}
	cs, err := c.cursor.ReadCursor()
	if err != nil || !cs.Visible {
		return
	}
	if cs.Shape != c.cursorShape || c.cursorGlyph == nil {
		if cs.Glyph == nil {
			return
		}
		c.cursorShape = cs.Shape
		c.cursorGlyph = cs.Glyph
		c.cursorHot = cs.Hotspot
	}

	cx, cy := float64(state.Cursor.X), float64(state.Cursor.Y)
	if cx < float64(region.Min.X) || cx > float64(region.Max.X) ||
		cy < float64(region.Min.Y) || cy > float64(region.Max.Y) {
		return
	}

	viewW := float64(region.Dx())
	viewH := float64(region.Dy())
	scaleX := float64(c.destW) / viewW
	scaleY := float64(c.destH) / viewH

	glyphB := c.cursorGlyph.Bounds()
	left := (cx - float64(region.Min.X) - float64(c.cursorHot.X)) * scaleX
	top := (cy - float64(region.Min.Y) - float64(c.cursorHot.Y)) * scaleY
	right := left + float64(glyphB.Dx())*scaleX
	bottom := top + float64(glyphB.Dy())*scaleY
	if right < 0 || bottom < 0 || left > float64(c.destW) || top > float64(c.destH) {
		return
	}

	dst := image.Rect(int(left), int(top), int(right), int(bottom))
	xdraw.NearestNeighbor.Scale(c.out, dst, c.cursorGlyph, glyphB, xdraw.Over, nil)
}

// drawBadge shows the layout badge while unexpired, else the status
// badge; expired textures are released here.
func (c *Compositor) drawBadge(now time.Time) {
	if !c.layout.expired(now) {
		c.blitBadge(c.layout.img)
		return
	}
	if c.layout.img != nil {
		c.layout.clear()
	}
	if !c.status.expired(now) {
		c.blitBadge(c.status.img)
		return
	}
	if c.status.img != nil {
		c.status.clear()
	}
}

// blitBadge draws a badge anchored to the bottom-left pixel box.
func (c *Compositor) blitBadge(img *image.RGBA) {
	b := img.Bounds()
	w := b.Dx()
	if w > c.destW {
		w = c.destW
	}
	h := b.Dy()
	top := c.destH - h
	if top < 0 {
		top = 0
	}
	dst := image.Rect(0, top, w, c.destH)
	xdraw.Draw(c.out, dst, img, b.Min, xdraw.Over)
}

// invert flips RGB in place, leaving alpha untouched.
func invert(img *image.RGBA) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = 255 - pix[i]
		pix[i+1] = 255 - pix[i+1]
		pix[i+2] = 255 - pix[i+2]
	}
}
