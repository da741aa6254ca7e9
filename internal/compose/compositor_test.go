package compose

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/lowvis/magnifier/internal/capture"
	"github.com/lowvis/magnifier/internal/logging"
	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/platform"
	"github.com/lowvis/magnifier/internal/track"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fakePresenter struct {
	attached monitor.Descriptor
	presents int
	last     *image.RGBA
	closes   int
}

func (f *fakePresenter) Attach(m monitor.Descriptor) error { f.attached = m; return nil }
func (f *fakePresenter) Present(img *image.RGBA) error     { f.presents++; f.last = img; return nil }
func (f *fakePresenter) Close() error                      { f.closes++; return nil }

type fakeCursor struct {
	state platform.CursorState
	err   error
}

func (f *fakeCursor) ReadCursor() (platform.CursorState, error) { return f.state, f.err }

func destMonitor() monitor.Descriptor {
	return monitor.Descriptor{ID: `\\.\DISPLAY2`, Bounds: image.Rect(0, 0, 8, 8), Scale: 1.0}
}

func solidFrame(w, h int, c color.RGBA) *capture.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &capture.Frame{Img: img, Width: w, Height: h, Seq: 1}
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func TestPresentBeforeAttach(t *testing.T) {
	c := New(&fakePresenter{}, nil, logging.Discard())
	err := c.Present(solidFrame(8, 8, red), track.ViewState{SourceRegion: image.Rect(0, 0, 8, 8), Zoom: 1}, t0)
	if err == nil {
		t.Fatal("present before attach should fail")
	}
}

func TestPresentScalesRegion(t *testing.T) {
	p := &fakePresenter{}
	c := New(p, nil, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}

	// Left half red, right half blue; crop the right half at zoom 4 so
	// the nearest-neighbor scaler fills the output with blue.
	frame := solidFrame(8, 8, red)
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			frame.Img.SetRGBA(x, y, blue)
		}
	}
	state := track.ViewState{SourceRegion: image.Rect(4, 0, 8, 4), Zoom: 4}
	if err := c.Present(frame, state, t0); err != nil {
		t.Fatal(err)
	}
	if p.presents != 1 || p.last == nil {
		t.Fatalf("presenter called %d times", p.presents)
	}
	if got := p.last.RGBAAt(4, 4); got != blue {
		t.Errorf("output pixel = %+v, want blue", got)
	}
}

func TestPresentRejectsOutOfFrameRegion(t *testing.T) {
	c := New(&fakePresenter{}, nil, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}
	state := track.ViewState{SourceRegion: image.Rect(100, 100, 200, 200), Zoom: 2}
	if err := c.Present(solidFrame(8, 8, red), state, t0); err == nil {
		t.Fatal("region outside the frame should fail")
	}
}

func TestPresentInverts(t *testing.T) {
	p := &fakePresenter{}
	c := New(p, nil, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}
	state := track.ViewState{SourceRegion: image.Rect(0, 0, 8, 8), Zoom: 1, InvertColors: true}
	if err := c.Present(solidFrame(8, 8, red), state, t0); err != nil {
		t.Fatal(err)
	}
	want := color.RGBA{G: 255, B: 255, A: 255} // red inverted is cyan
	if got := p.last.RGBAAt(4, 4); got != want {
		t.Errorf("inverted pixel = %+v, want %+v", got, want)
	}
}

func TestDrawCursorInsideCrop(t *testing.T) {
	glyph := image.NewRGBA(image.Rect(0, 0, 2, 2))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			glyph.SetRGBA(x, y, white)
		}
	}
	cur := &fakeCursor{state: platform.CursorState{Shape: 1, Glyph: glyph, Visible: true}}

	p := &fakePresenter{}
	c := New(p, cur, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}

	state := track.ViewState{
		SourceRegion:  image.Rect(0, 0, 4, 4),
		Zoom:          4,
		CursorVisible: true,
	}
	state.Cursor.X, state.Cursor.Y = 1, 1
	if err := c.Present(solidFrame(8, 8, red), state, t0); err != nil {
		t.Fatal(err)
	}
	// Glyph lands at output (2,2)-(6,6), scaled 2x.
	if got := p.last.RGBAAt(3, 3); got != white {
		t.Errorf("cursor pixel = %+v, want white", got)
	}
	if got := p.last.RGBAAt(0, 0); got != red {
		t.Errorf("corner pixel = %+v, want untouched red", got)
	}
}

func TestDrawCursorSkippedOutsideCrop(t *testing.T) {
	glyph := image.NewRGBA(image.Rect(0, 0, 2, 2))
	glyph.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	cur := &fakeCursor{state: platform.CursorState{Shape: 1, Glyph: glyph, Visible: true}}

	p := &fakePresenter{}
	c := New(p, cur, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}

	state := track.ViewState{SourceRegion: image.Rect(0, 0, 4, 4), Zoom: 4, CursorVisible: true}
	state.Cursor.X, state.Cursor.Y = 6, 6
	if err := c.Present(solidFrame(8, 8, red), state, t0); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got := p.last.RGBAAt(x, y); got != red {
				t.Fatalf("pixel (%d,%d) = %+v, cursor outside crop should not draw", x, y, got)
			}
		}
	}
}

func TestStatusBadgeLifecycle(t *testing.T) {
	p := &fakePresenter{}
	c := New(p, nil, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}

	c.SetStatusBadge("Zoom 2.00x", 2*time.Second, t0)
	if got := c.StatusBusyUntil(); !got.Equal(t0.Add(2 * time.Second)) {
		t.Fatalf("StatusBusyUntil = %v", got)
	}

	state := track.ViewState{SourceRegion: image.Rect(0, 0, 8, 8), Zoom: 1}
	if err := c.Present(solidFrame(8, 8, red), state, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	// The badge's black background covers the bottom-left box, which at
	// this tiny output size is the whole surface.
	if got := p.last.RGBAAt(0, 7); (got != color.RGBA{A: 255}) {
		t.Errorf("badge pixel = %+v, want black", got)
	}

	// Expired badges are released and no longer drawn.
	if err := c.Present(solidFrame(8, 8, red), state, t0.Add(3*time.Second)); err != nil {
		t.Fatal(err)
	}
	if got := p.last.RGBAAt(0, 7); got != red {
		t.Errorf("pixel after expiry = %+v, want red", got)
	}
	if c.status.img != nil {
		t.Error("expired status badge texture not released")
	}
}

func TestLayoutBadgeTakesPriority(t *testing.T) {
	c := New(&fakePresenter{}, nil, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}
	c.SetStatusBadge("status", 5*time.Second, t0)
	c.ShowLayoutBadge("EN", 2*time.Second, t0)

	state := track.ViewState{SourceRegion: image.Rect(0, 0, 8, 8), Zoom: 1}
	if err := c.Present(solidFrame(8, 8, red), state, t0.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	if c.layout.img == nil {
		t.Fatal("layout badge should still be active")
	}

	// Once the layout badge lapses the status badge resumes.
	if err := c.Present(solidFrame(8, 8, red), state, t0.Add(3*time.Second)); err != nil {
		t.Fatal(err)
	}
	if c.layout.img != nil {
		t.Error("expired layout badge texture not released")
	}
	if c.status.img == nil {
		t.Error("status badge should survive the layout badge")
	}
}

func TestCloseReleasesPresenter(t *testing.T) {
	p := &fakePresenter{}
	c := New(p, nil, logging.Discard())
	if err := c.Attach(destMonitor()); err != nil {
		t.Fatal(err)
	}
	c.SetStatusBadge("bye", time.Second, t0)
	c.Close()
	if p.closes != 1 {
		t.Errorf("presenter closed %d times, want 1", p.closes)
	}
	if c.status.img != nil {
		t.Error("badge textures should be released on close")
	}
}
