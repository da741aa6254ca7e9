package geometry

import (
	"image"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float32
		want      float32
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -1, 0, 10, 0},
		{"above", 11, 0, 10, 10},
		{"at low edge", 0, 0, 10, 0},
		{"at high edge", 10, 0, 10, 10},
		{"inverted range collapses to lo", 5, 8, 2, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestDist(t *testing.T) {
	p := Point{X: 0, Y: 0}
	q := Point{X: 3, Y: 4}
	if got := p.Dist(q); got != 5 {
		t.Errorf("Dist = %v, want 5", got)
	}
	if got := q.Dist(q); got != 0 {
		t.Errorf("Dist to self = %v, want 0", got)
	}
}

func TestRectCenterContains(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 220}
	if c := r.Center(); c.X != 60 || c.Y != 120 {
		t.Errorf("Center = %+v, want (60, 120)", c)
	}
	if !r.Contains(Point{X: 10, Y: 20}) || !r.Contains(Point{X: 110, Y: 220}) {
		t.Error("edges should be inside")
	}
	if r.Contains(Point{X: 9, Y: 20}) {
		t.Error("point left of rect reported inside")
	}
	if r.Empty() {
		t.Error("non-degenerate rect reported empty")
	}
	if !(Rect{Left: 5, Top: 5, Right: 5, Bottom: 10}).Empty() {
		t.Error("zero-width rect not reported empty")
	}
}

func TestToImageRectRoundsOutward(t *testing.T) {
	r := Rect{Left: 10.3, Top: 20.7, Right: 110.2, Bottom: 220.6}
	got := r.ToImageRect()
	want := image.Rect(10, 20, 111, 221)
	if got != want {
		t.Errorf("ToImageRect = %v, want %v", got, want)
	}
}

func TestViewRectStaysInsideFrame(t *testing.T) {
	const frameW, frameH = 1920, 1080
	centers := []Point{
		{X: 0, Y: 0},
		{X: frameW, Y: frameH},
		{X: 960, Y: 540},
		{X: -500, Y: 2000},
		{X: 17.3, Y: 901.9},
	}
	for zoom := float32(1.0); zoom <= 12.0; zoom += 0.25 {
		viewW := frameW / zoom
		viewH := frameH / zoom
		for _, c := range centers {
			r, clamped := ViewRect(c, viewW, viewH, frameW, frameH)
			if r.Left < 0 || r.Top < 0 || r.Right > frameW || r.Bottom > frameH {
				t.Fatalf("zoom %v center %+v: rect %+v escapes frame", zoom, c, r)
			}
			const eps = 0.01
			if w := r.Width(); w < viewW-eps || w > viewW+eps {
				t.Fatalf("zoom %v: width %v, want %v", zoom, w, viewW)
			}
			if h := r.Height(); h < viewH-eps || h > viewH+eps {
				t.Fatalf("zoom %v: height %v, want %v", zoom, h, viewH)
			}
			if got := r.Center(); got.Dist(clamped) > eps {
				t.Fatalf("zoom %v: rect center %+v disagrees with clamped center %+v", zoom, got, clamped)
			}
		}
	}
}

func TestViewRectCenterClampRange(t *testing.T) {
	// 1920x1080 at zoom 2 gives a 960x540 view; valid centers span
	// [480,1440] x [270,810].
	tests := []struct {
		name   string
		center Point
		want   Point
	}{
		{"top-left overflow", Point{X: 0, Y: 0}, Point{X: 480, Y: 270}},
		{"bottom-right overflow", Point{X: 1920, Y: 1080}, Point{X: 1440, Y: 810}},
		{"interior untouched", Point{X: 700, Y: 500}, Point{X: 700, Y: 500}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := ViewRect(tt.center, 960, 540, 1920, 1080)
			if got != tt.want {
				t.Errorf("clamped center = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewRectOversizedView(t *testing.T) {
	r, c := ViewRect(Point{X: 100, Y: 100}, 4000, 3000, 1920, 1080)
	if r.Left != 0 || r.Top != 0 || r.Right != 1920 || r.Bottom != 1080 {
		t.Errorf("oversized view should cover the whole frame, got %+v", r)
	}
	if c.X != 960 || c.Y != 540 {
		t.Errorf("center = %+v, want frame center", c)
	}
}
