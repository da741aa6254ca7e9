package track

import (
	"image"
	"time"

	"github.com/lowvis/magnifier/internal/geometry"
)

// centerState is the running viewport center plus the restore-on-demand
// history. The previous center is only recorded when a jump exceeds
// PrevCenterThreshold and PrevCenterCooldown has elapsed since the last
// save, so rapid smoothed motion does not churn the slot.
type centerState struct {
	current geometry.Point
	has     bool

	previous    geometry.Point
	hasPrevious bool
	savedAt     time.Time
}

// maybeRecord saves the pre-jump center when the move to target is
// large enough and the cooldown has elapsed.
func (c *centerState) maybeRecord(target geometry.Point, now time.Time) {
	if !c.has || c.current.Dist(target) < PrevCenterThreshold {
		return
	}
	if c.hasPrevious && now.Sub(c.savedAt) < PrevCenterCooldown {
		return
	}
	c.previous = c.current
	c.hasPrevious = true
	c.savedAt = now
}

// set adopts a new center, recording history as a side effect.
func (c *centerState) set(p geometry.Point, now time.Time) {
	c.maybeRecord(p, now)
	c.current = p
	c.has = true
}

// restore swaps the current and previous centers.
func (c *centerState) restore(now time.Time) bool {
	if !c.hasPrevious {
		return false
	}
	if !c.has {
		c.current = c.previous
		c.has = true
	} else {
		c.current, c.previous = c.previous, c.current
	}
	c.savedAt = now
	return true
}

// clear drops the center and all history.
func (c *centerState) clear() {
	*c = centerState{}
}

// clickLock caps viewport motion around the most recent left click so a
// deliberate click is not dragged away by a simultaneous stale signal.
// Cleared when the pointer moves or the next click replaces it.
type clickLock struct {
	active    bool
	screen    image.Point
	source    geometry.Point
	hasSource bool
	at        time.Time
}

func (l *clickLock) arm(screen image.Point, source geometry.Point, hasSource bool, now time.Time) {
	l.active = true
	l.screen = screen
	l.source = source
	l.hasSource = hasSource
	l.at = now
}

// limit clamps p to within rate*elapsed of the click point per axis.
// Returns p unchanged once the lock is inactive or unanchorable.
func (l *clickLock) limit(p geometry.Point, now time.Time) geometry.Point {
	if !l.active || !l.hasSource {
		return p
	}
	elapsed := now.Sub(l.at)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > ClickLockDuration {
		l.active = false
		return p
	}
	reach := ClickLimitPerSecond * float32(elapsed.Seconds())
	if reach <= 0 {
		return l.source
	}
	return geometry.Point{
		X: geometry.Clamp(p.X, l.source.X-reach, l.source.X+reach),
		Y: geometry.Clamp(p.Y, l.source.Y-reach, l.source.Y+reach),
	}
}

// anchorState is the terminal bottom-left pin: while the end-of-line
// key has been held for AnchorHoldThreshold over a matching foreground
// window, the view's bottom-left corner is pinned to that window's
// bottom-left. After key release the grace window keeps normal inputs
// suppressed so key-up jitter does not yank the view away.
type anchorState struct {
	keyDown    bool
	pressedAt  time.Time
	graceUntil time.Time
	aligned    bool
	anchor     geometry.Point
	hasAnchor  bool
	lastSeq    uint64
}

// observe applies a key-state sample transition.
func (a *anchorState) observe(s *keySample) {
	if s == nil || s.seq == a.lastSeq {
		return
	}
	a.lastSeq = s.seq
	if s.down && !a.keyDown {
		a.keyDown = true
		a.pressedAt = s.at
		a.aligned = false
		a.graceUntil = time.Time{}
		a.hasAnchor = false
	} else if !s.down && a.keyDown {
		a.keyDown = false
		a.aligned = false
		a.graceUntil = s.at.Add(AnchorReleaseGrace)
	}
}

// suppressed reports whether normal tracking input is ignored: during
// active alignment and through the post-release grace window.
func (a *anchorState) suppressed(now time.Time) bool {
	return now.Before(a.graceUntil) || a.aligned
}

// replyZone is the messenger reply-strip clamp: armed by a click in the
// bottom strip of the source monitor while a messenger app is
// foreground, it bounds subsequent center motion to the strip until the
// pointer strays from the click anchor.
type replyZone struct {
	active bool
	zone   geometry.Rect
	anchor image.Point
}

func (z *replyZone) release() {
	z.active = false
}

// pointerMoved releases the zone once the pointer is more than
// ReplyReleaseDist away from the anchor on either axis.
func (z *replyZone) pointerMoved(pt image.Point) {
	if !z.active {
		return
	}
	dx := pt.X - z.anchor.X
	dy := pt.Y - z.anchor.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > ReplyReleaseDist || dy > ReplyReleaseDist {
		z.active = false
	}
}
