package track

import (
	"image"
	"sync/atomic"
	"time"
)

// Signals is the write-side boundary for the out-of-process input and
// accessibility listeners. Each signal is a latest-value cell: the
// callback swaps in an immutable sample and returns, so nothing heavy
// ever runs on the shared OS callback context. The tracker reads the
// cells during Resolve; samples are never pushed into it.
type Signals struct {
	caret   atomic.Pointer[pointSample]
	pointer atomic.Pointer[pointSample]
	focus   atomic.Pointer[rectSample]
	click   atomic.Pointer[pointSample]
	anchor  atomic.Pointer[keySample]

	seq atomic.Uint64
}

type pointSample struct {
	pt  image.Point
	at  time.Time
	seq uint64
}

type rectSample struct {
	rect image.Rectangle
	at   time.Time
	seq  uint64
}

type keySample struct {
	down bool
	at   time.Time
	seq  uint64
}

// NewSignals returns an empty signal set.
func NewSignals() *Signals { return &Signals{} }

// UpdateCaret records the latest caret screen position.
func (s *Signals) UpdateCaret(pt image.Point, now time.Time) {
	s.caret.Store(&pointSample{pt: pt, at: now, seq: s.seq.Add(1)})
}

// UpdatePointer records the latest pointer screen position.
func (s *Signals) UpdatePointer(pt image.Point, now time.Time) {
	s.pointer.Store(&pointSample{pt: pt, at: now, seq: s.seq.Add(1)})
}

// UpdateFocus records the latest focused-element rectangle.
func (s *Signals) UpdateFocus(rect image.Rectangle, now time.Time) {
	s.focus.Store(&rectSample{rect: rect, at: now, seq: s.seq.Add(1)})
}

// UpdateClick records a left-button click at a screen position.
func (s *Signals) UpdateClick(pt image.Point, now time.Time) {
	s.click.Store(&pointSample{pt: pt, at: now, seq: s.seq.Add(1)})
}

// UpdateAnchorKey records the end-of-line key state used by the
// terminal bottom-left pin.
func (s *Signals) UpdateAnchorKey(down bool, now time.Time) {
	s.anchor.Store(&keySample{down: down, at: now, seq: s.seq.Add(1)})
}

func (s *Signals) caretSample() *pointSample   { return s.caret.Load() }
func (s *Signals) pointerSample() *pointSample { return s.pointer.Load() }
func (s *Signals) focusSample() *rectSample    { return s.focus.Load() }
func (s *Signals) clickSample() *pointSample   { return s.click.Load() }
func (s *Signals) anchorSample() *keySample    { return s.anchor.Load() }
