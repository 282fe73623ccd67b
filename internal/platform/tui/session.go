package tui

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/driver"
	"github.com/vovakirdan/scriptloop/internal/registry"
	"github.com/vovakirdan/scriptloop/internal/script"
	"github.com/vovakirdan/scriptloop/internal/storage"
)

// SessionOptions describes the script and host settings for NewSession.
// Either Program or Source must be set; Source is compiled and its
// compile time counts toward the load time.
type SessionOptions struct {
	Name    string
	Source  string
	Program *script.Program

	Config       core.RuntimeConfig
	CallTimeout  time.Duration
	MaxCallDepth int
	InputHold    time.Duration
	DebugKey     string

	Logger   *log.Logger
	Renderer *Renderer
}

// NewSession builds the screen, canvas, input, runtime and driver for one
// script, loads it and runs init. A load failure is returned as is so the
// caller can treat it as fatal.
func NewSession(o SessionOptions) (Session, error) {
	logger := o.Logger
	if logger == nil {
		logger = log.Default()
	}

	clock := core.NewMonotonicClock()
	screen := core.NewScreen(o.Config.ScreenW, o.Config.ScreenH)
	canvas := core.NewPixelCanvas(screen, o.Config.CellW, o.Config.CellH)
	keys := core.NewKeyState(clock, o.InputHold)

	rt, err := script.New(script.Options{
		Host: registry.Host{
			Canvas: canvas,
			Input:  keys,
			Clock:  clock,
			Logger: logger,
		},
		Logger:       logger,
		CallTimeout:  o.CallTimeout,
		MaxCallDepth: o.MaxCallDepth,
	})
	if err != nil {
		return Session{}, err
	}

	d := driver.New(driver.Options{
		Runtime: rt,
		Canvas:  canvas,
		Clock:   clock,
		Logger:  logger,
	})

	name := o.Name
	if o.Program != nil {
		name = o.Program.Name()
		err = d.Install(o.Program)
	} else {
		err = d.Load(o.Name, o.Source)
	}
	if err != nil {
		return Session{}, err
	}
	if err := d.Start(); err != nil {
		return Session{}, err
	}

	return Session{
		Script:   name,
		Driver:   d,
		Screen:   screen,
		Keys:     keys,
		Config:   o.Config,
		DebugKey: o.DebugKey,
		Renderer: o.Renderer,
	}, nil
}

// NewRunRecord summarizes a finished driver for the run history.
func NewRunRecord(scriptName, origin string, started time.Time, st driver.Stats) storage.RunRecord {
	return storage.RunRecord{
		Script:      scriptName,
		Origin:      origin,
		StartedAt:   started,
		Ticks:       st.Ticks,
		LoadMs:      float64(st.LoadTime) / float64(time.Millisecond),
		InitMs:      float64(st.InitTime) / float64(time.Millisecond),
		AvgFrameMs:  st.AvgDelta * 1000,
		AvgUpdateMs: st.AvgUpdate * 1000,
		AvgDrawMs:   st.AvgDraw * 1000,
		Faults:      st.Faults,
	}
}
