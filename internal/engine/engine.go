// Package engine drives the capture -> track -> compose pipeline on a
// fixed tick and owns the recovery, badge-sequencing and mutation
// policies around it.
package engine

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/lowvis/magnifier/internal/capture"
	"github.com/lowvis/magnifier/internal/compose"
	"github.com/lowvis/magnifier/internal/config"
	"github.com/lowvis/magnifier/internal/monitor"
	"github.com/lowvis/magnifier/internal/platform"
	"github.com/lowvis/magnifier/internal/track"
	"github.com/lowvis/magnifier/internal/version"
)

// TickInterval is the fixed pipeline cadence. One tick runs capture,
// tracking resolution and presentation sequentially; ticks never
// overlap.
const TickInterval = 16 * time.Millisecond

// BadgeDuration is how long status badges stay up.
const BadgeDuration = 2 * time.Second

// Status is a point-in-time snapshot of the running engine, served to
// the control surface without touching tick-owned state.
type Status struct {
	Mode          string  `yaml:"mode"          json:"mode"`
	Zoom          float32 `yaml:"zoom"          json:"zoom"`
	InvertColors  bool    `yaml:"invertColors"  json:"invertColors"`
	SourceMonitor string  `yaml:"sourceMonitor" json:"sourceMonitor"`
	DestMonitor   string  `yaml:"destMonitor"   json:"destMonitor"`
	FrameSeq      uint64  `yaml:"frameSeq"      json:"frameSeq"`
	Recovering    bool    `yaml:"recovering"    json:"recovering"`
}

// Engine owns the tick loop. All pipeline state is confined to the
// tick goroutine; external mutations arrive through a command channel
// drained at the start of each tick.
type Engine struct {
	provider *platform.Provider
	cfg      *config.Config
	log      *slog.Logger

	monitors *monitor.Manager
	source   monitor.Descriptor
	dest     monitor.Descriptor

	cap     *capture.Source
	signals *track.Signals
	tracker *track.Tracker
	comp    *compose.Compositor

	cmds chan func(now time.Time)

	statusMu sync.Mutex
	status   Status

	queuedBadge    string
	queuedDuration time.Duration
	haveQueued     bool

	lastLayout     string
	lastPointerPos image.Point
	havePointer    bool
	cfgDirty       bool
}

// New wires an engine from the platform provider and the loaded
// config. Monitor selection honors the configured IDs.
func New(provider *platform.Provider, cfg *config.Config, log *slog.Logger) (*Engine, error) {
	monitors, err := monitor.NewManager(provider.Monitors)
	if err != nil {
		return nil, err
	}
	source, dest, err := monitors.Pick(cfg.SourceMonitor, cfg.DestMonitor)
	if err != nil {
		return nil, err
	}

	signals := track.NewSignals()
	tracker := track.New(signals, provider.Foreground, track.DefaultOptions())
	tracker.SetSourceMonitor(source)
	tracker.SetZoom(cfg.Zoom)
	tracker.SetMode(track.ParseMode(cfg.TrackingMode))
	tracker.SetInvert(cfg.InvertColors)

	e := &Engine{
		provider: provider,
		cfg:      cfg,
		log:      log,
		monitors: monitors,
		source:   source,
		dest:     dest,
		cap:      capture.NewSource(provider.Capture, log),
		signals:  signals,
		tracker:  tracker,
		comp:     compose.New(provider.Presenter, provider.Cursor, log),
		cmds:     make(chan func(now time.Time), 16),
	}
	e.publishStatus()
	return e, nil
}

// Signals returns the write-side cells for external signal collectors
// (caret, pointer, focus, click, anchor key).
func (e *Engine) Signals() *track.Signals { return e.signals }

// Run starts the pipeline and blocks until ctx is cancelled or
// initialization fails. All exit paths funnel through the same
// teardown sequence.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.cap.Initialize(e.source); err != nil {
		return err
	}
	if err := e.comp.Attach(e.dest); err != nil {
		e.cap.Shutdown()
		return err
	}
	defer e.teardown()

	e.log.Info("magnifier started",
		"source", e.source.ID, "dest", e.dest.ID,
		"zoom", e.tracker.Zoom(), "mode", e.tracker.Mode().String())

	now := time.Now()
	e.comp.SetStatusBadge(fmt.Sprintf("Magnifier %s", version.Version), BadgeDuration, now)
	e.queueBadge(now.Format("15:04"), BadgeDuration)

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.tick(time.Now())
		}
	}
}

// tick runs one pipeline iteration. Skipped work degrades to "no
// visible update this tick"; nothing here terminates the loop.
func (e *Engine) tick(now time.Time) {
	e.drainCommands(now)
	e.pollPointer(now)
	e.checkLayout(now)
	e.sequenceBadges(now)

	if e.cap.NeedsReinitialize() {
		if err := e.cap.Reinitialize(); err != nil {
			e.log.Debug("capture reinitialize pending", "error", err)
			e.publishStatus()
			return
		}
	}

	frame, err := e.cap.AcquireFrame()
	if err != nil {
		e.log.Error("acquire failed", "error", err)
		e.publishStatus()
		return
	}
	if frame == nil {
		// timeout or flagged session: keep prior output
		e.publishStatus()
		return
	}

	state := e.tracker.Resolve(now, float32(frame.Width), float32(frame.Height))
	if err := e.comp.Present(frame, state, now); err != nil {
		e.log.Warn("present failed", "error", err)
	}
	e.flushConfig()
	e.publishStatus()
}

func (e *Engine) drainCommands(now time.Time) {
	for {
		select {
		case cmd := <-e.cmds:
			cmd(now)
		default:
			return
		}
	}
}

// pollPointer samples the cursor position and forwards it into the
// pointer signal when it moved. This is the one collector the engine
// hosts itself; caret and focus collectors are external.
func (e *Engine) pollPointer(now time.Time) {
	if e.provider.Cursor == nil {
		return
	}
	cs, err := e.provider.Cursor.ReadCursor()
	if err != nil || !cs.Visible {
		return
	}
	if e.havePointer && cs.Pos == e.lastPointerPos {
		return
	}
	e.lastPointerPos = cs.Pos
	e.havePointer = true
	e.signals.UpdatePointer(cs.Pos, now)
}

// checkLayout shows a badge when the keyboard layout changes.
func (e *Engine) checkLayout(now time.Time) {
	if e.provider.Layout == nil {
		return
	}
	layout := e.provider.Layout.Layout()
	if layout == "" || layout == e.lastLayout {
		return
	}
	first := e.lastLayout == ""
	e.lastLayout = layout
	if !first {
		e.comp.ShowLayoutBadge(layout, BadgeDuration, now)
	}
}

// sequenceBadges promotes a queued status badge once the active one
// has expired.
func (e *Engine) sequenceBadges(now time.Time) {
	if !e.haveQueued {
		return
	}
	busy := e.comp.StatusBusyUntil()
	if busy.IsZero() || !busy.After(now) {
		e.comp.SetStatusBadge(e.queuedBadge, e.queuedDuration, now)
		e.haveQueued = false
	}
}

// queueBadge shows a status badge, deferring it while another is up.
func (e *Engine) queueBadge(text string, d time.Duration) {
	e.queuedBadge = text
	e.queuedDuration = d
	e.haveQueued = true
}

func (e *Engine) flushConfig() {
	if !e.cfgDirty {
		return
	}
	e.cfgDirty = false
	e.cfg.Zoom = e.tracker.Zoom()
	e.cfg.TrackingMode = e.tracker.Mode().String()
	e.cfg.InvertColors = e.tracker.Invert()
	e.cfg.SourceMonitor = e.source.ID
	e.cfg.DestMonitor = e.dest.ID
	if err := e.cfg.Save(); err != nil {
		e.log.Warn("config save failed", "error", err)
	}
}

func (e *Engine) publishStatus() {
	s := Status{
		Mode:          e.tracker.Mode().String(),
		Zoom:          e.tracker.Zoom(),
		InvertColors:  e.tracker.Invert(),
		SourceMonitor: e.source.ID,
		DestMonitor:   e.dest.ID,
		FrameSeq:      e.cap.Seq(),
		Recovering:    e.cap.NeedsReinitialize(),
	}
	e.statusMu.Lock()
	e.status = s
	e.statusMu.Unlock()
}

// teardown is the single shutdown path: capture session first (which
// releases any checked-out frame), then the presentation surface.
func (e *Engine) teardown() {
	e.cap.Shutdown()
	e.comp.Close()
	e.flushConfig()
	e.log.Info("magnifier stopped")
}
