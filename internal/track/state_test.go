package track

import (
	"image"
	"testing"
	"time"

	"github.com/lowvis/magnifier/internal/geometry"
)

func TestCenterStateRecordThresholdAndCooldown(t *testing.T) {
	var c centerState
	c.set(geometry.Point{X: 100, Y: 100}, t0)
	if c.hasPrevious {
		t.Fatal("first set should not record history")
	}

	// Small move: below the threshold, nothing saved.
	c.set(geometry.Point{X: 150, Y: 100}, t0.Add(time.Second))
	if c.hasPrevious {
		t.Fatal("sub-threshold move recorded history")
	}

	// Large move: the pre-jump center is saved.
	c.set(geometry.Point{X: 600, Y: 100}, t0.Add(2*time.Second))
	if !c.hasPrevious || c.previous.X != 150 {
		t.Fatalf("previous = %+v, want (150, 100)", c.previous)
	}

	// Another large move inside the cooldown keeps the first save.
	c.set(geometry.Point{X: 1200, Y: 100}, t0.Add(2*time.Second+100*time.Millisecond))
	if c.previous.X != 150 {
		t.Errorf("cooldown violated: previous = %+v", c.previous)
	}

	// Past the cooldown the slot updates again.
	c.set(geometry.Point{X: 100, Y: 900}, t0.Add(3*time.Second))
	if c.previous.X != 1200 {
		t.Errorf("previous = %+v, want (1200, 100)", c.previous)
	}
}

func TestCenterStateRestoreSwaps(t *testing.T) {
	var c centerState
	c.set(geometry.Point{X: 100, Y: 100}, t0)
	c.set(geometry.Point{X: 600, Y: 600}, t0.Add(time.Second))

	if !c.restore(t0.Add(2 * time.Second)) {
		t.Fatal("restore should succeed")
	}
	if c.current.X != 100 || c.previous.X != 600 {
		t.Fatalf("restore did not swap: current %+v previous %+v", c.current, c.previous)
	}
	if !c.restore(t0.Add(3 * time.Second)) {
		t.Fatal("second restore should swap back")
	}
	if c.current.X != 600 {
		t.Errorf("current = %+v, want (600, 600)", c.current)
	}
}

func TestClickLockLimit(t *testing.T) {
	var l clickLock

	// Inactive lock passes points through.
	p := geometry.Point{X: 900, Y: 900}
	if got := l.limit(p, t0); got != p {
		t.Fatalf("inactive lock altered point: %+v", got)
	}

	l.arm(image.Pt(500, 500), geometry.Point{X: 500, Y: 500}, true, t0)

	// Zero elapsed: pinned to the click point.
	if got := l.limit(p, t0); got.X != 500 || got.Y != 500 {
		t.Fatalf("zero-elapsed limit = %+v, want click point", got)
	}

	// One second later: within 50px per axis.
	got := l.limit(p, t0.Add(time.Second))
	if got.X != 550 || got.Y != 550 {
		t.Fatalf("1s limit = %+v, want (550, 550)", got)
	}

	// Points already inside the reach are untouched.
	q := geometry.Point{X: 510, Y: 490}
	if got := l.limit(q, t0.Add(time.Second)); got != q {
		t.Fatalf("in-reach point altered: %+v", got)
	}

	// Expiry deactivates the lock.
	if got := l.limit(p, t0.Add(ClickLockDuration+time.Millisecond)); got != p {
		t.Fatalf("expired lock altered point: %+v", got)
	}
	if l.active {
		t.Error("lock should deactivate on expiry")
	}
}

func TestAnchorStateObserve(t *testing.T) {
	var a anchorState

	down := &keySample{down: true, at: t0, seq: 1}
	a.observe(down)
	if !a.keyDown || !a.pressedAt.Equal(t0) {
		t.Fatalf("key down not observed: %+v", a)
	}

	// Same sample again is a no-op.
	a.aligned = true
	a.observe(down)
	if !a.aligned {
		t.Fatal("repeated sample reset state")
	}

	up := &keySample{down: false, at: t0.Add(2 * time.Second), seq: 2}
	a.observe(up)
	if a.keyDown || a.aligned {
		t.Fatalf("key up not observed: %+v", a)
	}
	if !a.suppressed(t0.Add(2*time.Second + 100*time.Millisecond)) {
		t.Error("grace window should suppress input")
	}
	if a.suppressed(t0.Add(2*time.Second + AnchorReleaseGrace + time.Millisecond)) {
		t.Error("suppression should lapse after the grace window")
	}
}

func TestReplyZoneRelease(t *testing.T) {
	z := replyZone{
		active: true,
		zone:   geometry.Rect{Left: 480, Top: 972, Right: 1919, Bottom: 1079},
		anchor: image.Pt(1000, 1000),
	}

	// Within the release distance on both axes: still active.
	z.pointerMoved(image.Pt(1008, 995))
	if !z.active {
		t.Fatal("small pointer drift released the zone")
	}

	z.pointerMoved(image.Pt(1000, 1020))
	if z.active {
		t.Error("pointer drift past the release distance should release")
	}

	// Release on an inactive zone stays inactive.
	z.pointerMoved(image.Pt(0, 0))
	if z.active {
		t.Error("inactive zone reactivated")
	}
}
