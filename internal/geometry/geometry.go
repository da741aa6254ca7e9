// Package geometry defines the source-frame-space value types shared by
// the tracker and the compositor. Coordinates are float32 pixels in the
// captured frame; conversion to image.Rectangle rounds outward so the
// crop never loses a partially covered pixel.
package geometry

import (
	"image"
	"math"
)

// Point is a position in source-frame pixel space.
type Point struct {
	X, Y float32
}

// Dist returns the Euclidean distance to other.
func (p Point) Dist(other Point) float32 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// Rect is an axis-aligned rectangle in source-frame pixel space.
type Rect struct {
	Left, Top, Right, Bottom float32
}

// Width returns Right-Left.
func (r Rect) Width() float32 { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() float32 { return r.Bottom - r.Top }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width()/2, Y: r.Top + r.Height()/2}
}

// Contains reports whether p lies inside the rectangle (inclusive edges).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// ToImageRect converts to an integer rectangle, rounding outward.
func (r Rect) ToImageRect() image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(r.Left))),
		int(math.Floor(float64(r.Top))),
		int(math.Ceil(float64(r.Right))),
		int(math.Ceil(float64(r.Bottom))),
	)
}

// Clamp limits v to [lo, hi]. lo > hi collapses to lo.
func Clamp(v, lo, hi float32) float32 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ViewRect builds the view rectangle of the given size centered at
// center, clamped so it stays inside frameW x frameH. The center is
// adjusted rather than the size: the half-extents always fit the frame.
func ViewRect(center Point, viewW, viewH, frameW, frameH float32) (Rect, Point) {
	if viewW > frameW {
		viewW = frameW
	}
	if viewH > frameH {
		viewH = frameH
	}
	halfW := viewW / 2
	halfH := viewH / 2
	cx := Clamp(center.X, halfW, frameW-halfW)
	cy := Clamp(center.Y, halfH, frameH-halfH)
	return Rect{
		Left:   cx - halfW,
		Top:    cy - halfH,
		Right:  cx + halfW,
		Bottom: cy + halfH,
	}, Point{X: cx, Y: cy}
}
