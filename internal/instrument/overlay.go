package instrument

import (
	"fmt"
	"math"
	"time"

	"github.com/vovakirdan/scriptloop/internal/core"
)

// Frame budgets, in seconds: 60 fps and 30 fps.
const (
	WarnThreshold     = 0.016
	CriticalThreshold = 0.033
)

var (
	panelColor    = core.RGBA(0, 0, 0, 100)
	warnLineColor = core.RGBA(255, 255, 0, 100)
	critLineColor = core.RGBA(255, 0, 0, 100)
)

// BarColor grades one sample against the frame budgets.
func BarColor(seconds float64) core.Color {
	switch {
	case seconds > CriticalThreshold:
		return core.ColorRed
	case seconds > WarnThreshold:
		return core.ColorYellow
	default:
		return core.ColorGreen
	}
}

// Layout sets the overlay geometry in canvas pixels.
type Layout struct {
	BarWidth        float64 // width of one sample bar
	PixelsPerSecond float64 // bar height per second of duration
	GraphHeight     float64
	Padding         float64
	FontSize        float64 // statistics text
	TitleSize       float64 // graph titles
}

// DefaultLayout draws 3 pixels per millisecond in 180 pixel tall graphs.
func DefaultLayout() Layout {
	return Layout{
		BarWidth:        3,
		PixelsPerSecond: 3000,
		GraphHeight:     180,
		Padding:         10,
		FontSize:        24,
		TitleSize:       20,
	}
}

// Snapshot is everything the overlay reads for one frame.
type Snapshot struct {
	Delta    []float64
	Update   []float64
	Draw     []float64
	LoadTime time.Duration
	InitTime time.Duration
	Faults   int
}

// Overlay renders timing diagnostics. It only reads the snapshot.
type Overlay struct {
	layout Layout
}

// NewOverlay returns an overlay with the given layout.
func NewOverlay(layout Layout) *Overlay {
	return &Overlay{layout: layout}
}

// Render draws the statistics panel and the three graphs onto c.
func (o *Overlay) Render(c core.Canvas, s Snapshot) {
	w, h := c.Size()
	l := o.layout

	o.drawStats(c, s)

	o.drawGraph(c, s.Delta, 0, h-l.GraphHeight, true, "Delta")

	x := w - float64(len(s.Update))*l.BarWidth - 2*l.Padding
	o.drawGraph(c, s.Update, x, 0, false,
		fmt.Sprintf("Update: %.0fus", average(s.Update)*1e6))
	o.drawGraph(c, s.Draw, x, l.GraphHeight+l.Padding, false,
		fmt.Sprintf("Draw: %.0fus", average(s.Draw)*1e6))
}

func (o *Overlay) drawStats(c core.Canvas, s Snapshot) {
	l := o.layout
	lines := []string{
		fmt.Sprintf("FPS: %d", FPS(s.Delta)),
		fmt.Sprintf("Loading time: %.2f ms", millis(s.LoadTime)),
		fmt.Sprintf("Init time: %.2f ms", millis(s.InitTime)),
	}
	if s.Faults > 0 {
		lines = append(lines, fmt.Sprintf("Faults: %d", s.Faults))
	}

	var width float64
	for _, line := range lines {
		if lw, _ := c.MeasureText(line, l.FontSize); lw > width {
			width = lw
		}
	}

	// baselines step by three quarters of the font size
	baseline := func(i int) float64 { return l.FontSize * (1 + 0.75*float64(i)) }

	c.FillRect(0, 0, width+2*l.Padding, baseline(len(lines)-1)+l.FontSize/2, panelColor)
	for i, line := range lines {
		c.DrawText(line, l.Padding, baseline(i), l.FontSize, core.ColorWhite)
	}
}

func (o *Overlay) drawGraph(c core.Canvas, data []float64, x, y float64, budgetLines bool, title string) {
	l := o.layout
	span := float64(len(data)) * l.BarWidth
	bottom := y + l.GraphHeight - l.Padding
	maxBar := l.GraphHeight - 2*l.Padding

	c.FillRect(x, y, span+2*l.Padding, l.GraphHeight, panelColor)

	for i, v := range data {
		bar := math.Min(v*l.PixelsPerSecond, maxBar)
		if bar <= 0 || math.IsNaN(bar) {
			continue
		}
		c.FillRect(x+l.Padding+float64(i)*l.BarWidth, bottom-bar, l.BarWidth, bar, BarColor(v))
	}

	if budgetLines {
		for _, line := range []struct {
			seconds float64
			color   core.Color
		}{
			{WarnThreshold, warnLineColor},
			{CriticalThreshold, critLineColor},
		} {
			ly := bottom - line.seconds*l.PixelsPerSecond
			c.DrawLine(x+l.Padding, ly, x+l.Padding+span, ly, 1, line.color)
		}
	}

	c.DrawText(title, x+l.Padding, y+l.TitleSize+2, l.TitleSize, core.ColorWhite)
}

// FPS derives frames per second from the mean frame delta.
func FPS(delta []float64) int {
	avg := average(delta)
	if avg <= 0 {
		return 0
	}
	return int(math.Round(1 / avg))
}

func average(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
