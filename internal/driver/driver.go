// Package driver sequences one frame of the script loop: sample the frame
// delta, apply debug toggles, run update and draw under a stopwatch, and
// draw the instrumentation overlay when enabled.
package driver

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/instrument"
	"github.com/vovakirdan/scriptloop/internal/script"
)

// ErrNotLoaded is returned by Start when no program is installed.
var ErrNotLoaded = errors.New("driver: script not loaded")

// Options configures a Driver.
type Options struct {
	Runtime *script.Runtime
	Canvas  core.Canvas
	Clock   core.Clock

	// Overlay draws the debug graphs. Defaults to instrument.DefaultLayout.
	Overlay *instrument.Overlay

	// Now is the stopwatch for update/draw and startup timings.
	// Defaults to time.Now.
	Now func() time.Time

	Logger *log.Logger
}

// Stats summarizes a run so far. Averages cover every tick, not just the
// rolling window.
type Stats struct {
	Ticks     int
	Faults    int
	LoadTime  time.Duration
	InitTime  time.Duration
	AvgDelta  float64 // seconds
	AvgUpdate float64 // seconds
	AvgDraw   float64 // seconds
}

// Driver owns the frame loop state for one runtime.
// Tick must be called from a single goroutine.
type Driver struct {
	rt      *script.Runtime
	canvas  core.Canvas
	clock   core.Clock
	overlay *instrument.Overlay
	now     func() time.Time
	logger  *log.Logger

	delta  instrument.Series
	update instrument.Series
	draw   instrument.Series

	debug   bool
	toggles int

	started bool
	last    float64

	loadTime time.Duration
	initTime time.Duration
	ticks    int
	faults   int
	totals   [3]float64 // indexed by instrument.Phase
}

// New creates a driver around an existing runtime.
func New(opts Options) *Driver {
	d := &Driver{
		rt:      opts.Runtime,
		canvas:  opts.Canvas,
		clock:   opts.Clock,
		overlay: opts.Overlay,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if d.overlay == nil {
		d.overlay = instrument.NewOverlay(instrument.DefaultLayout())
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.logger == nil {
		d.logger = log.Default()
	}
	return d
}

// Runtime returns the driven runtime.
func (d *Driver) Runtime() *script.Runtime {
	return d.rt
}

// Load compiles and installs source, recording how long it took.
func (d *Driver) Load(name, source string) error {
	start := d.now()
	err := d.rt.Load(name, source)
	d.loadTime = d.now().Sub(start)
	if err != nil {
		return err
	}

	d.logger.Info("script loaded", "script", name, "load_time", d.loadTime)
	return nil
}

// Install installs an already compiled program, recording how long the
// top-level evaluation took.
func (d *Driver) Install(p *script.Program) error {
	start := d.now()
	err := d.rt.Install(p)
	d.loadTime = d.now().Sub(start)
	if err != nil {
		return err
	}

	d.logger.Info("script installed", "script", p.Name(), "load_time", d.loadTime)
	return nil
}

// Start runs init once and anchors the frame clock.
func (d *Driver) Start() error {
	if d.rt.State() == script.Unloaded {
		return ErrNotLoaded
	}

	start := d.now()
	if fault := d.rt.CallInit(); fault != nil {
		d.faults++
	}
	d.initTime = d.now().Sub(start)

	d.last = d.clock.Seconds()
	d.started = true

	d.logger.Info("script initialized", "init_time", d.initTime)
	return nil
}

// ToggleDebug records one debug-toggle event; it is applied on the next Tick.
func (d *Driver) ToggleDebug() {
	d.toggles++
}

// Debug reports whether the overlay is drawn.
func (d *Driver) Debug() bool {
	return d.debug
}

// Tick runs one frame. Script faults are counted and never stop the loop.
func (d *Driver) Tick() {
	now := d.clock.Seconds()
	if !d.started {
		d.last = now
		d.started = true
	}
	delta := now - d.last
	if delta < 0 {
		delta = 0
	}
	d.last = now
	d.push(instrument.PhaseDelta, delta)

	if d.toggles%2 == 1 {
		d.debug = !d.debug
	}
	d.toggles = 0

	d.push(instrument.PhaseUpdate, d.timed(func() *script.Fault { return d.rt.CallUpdate(delta) }))
	d.push(instrument.PhaseDraw, d.timed(d.rt.CallDraw))

	if d.debug {
		d.overlay.Render(d.canvas, d.Snapshot())
	}

	d.ticks++
}

func (d *Driver) push(p instrument.Phase, v float64) {
	switch p {
	case instrument.PhaseDelta:
		d.delta.Push(v)
	case instrument.PhaseUpdate:
		d.update.Push(v)
	case instrument.PhaseDraw:
		d.draw.Push(v)
	}
	d.totals[p] += v
}

// timed runs call and returns its duration in seconds.
func (d *Driver) timed(call func() *script.Fault) float64 {
	start := d.now()
	if fault := call(); fault != nil {
		d.faults++
	}
	return d.now().Sub(start).Seconds()
}

// Samples returns a copy of one phase's rolling series, oldest first.
func (d *Driver) Samples(p instrument.Phase) []float64 {
	switch p {
	case instrument.PhaseDelta:
		return d.delta.Values()
	case instrument.PhaseUpdate:
		return d.update.Values()
	case instrument.PhaseDraw:
		return d.draw.Values()
	}
	return nil
}

// Snapshot gathers what the overlay needs.
func (d *Driver) Snapshot() instrument.Snapshot {
	return instrument.Snapshot{
		Delta:    d.delta.Values(),
		Update:   d.update.Values(),
		Draw:     d.draw.Values(),
		LoadTime: d.loadTime,
		InitTime: d.initTime,
		Faults:   d.faults,
	}
}

// Stats returns run totals.
func (d *Driver) Stats() Stats {
	s := Stats{
		Ticks:    d.ticks,
		Faults:   d.faults,
		LoadTime: d.loadTime,
		InitTime: d.initTime,
	}
	if d.ticks > 0 {
		n := float64(d.ticks)
		s.AvgDelta = d.totals[instrument.PhaseDelta] / n
		s.AvgUpdate = d.totals[instrument.PhaseUpdate] / n
		s.AvgDraw = d.totals[instrument.PhaseDraw] / n
	}
	return s
}
