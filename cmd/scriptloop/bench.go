package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/driver"
	"github.com/vovakirdan/scriptloop/internal/instrument"
	"github.com/vovakirdan/scriptloop/internal/platform/tui"
	"github.com/vovakirdan/scriptloop/internal/registry"
	"github.com/vovakirdan/scriptloop/internal/script"
)

var (
	flagFrames  int
	flagOverlay bool
	flagWidth   int
	flagHeight  int
)

var benchCmd = &cobra.Command{
	Use:   "bench <script.js>",
	Short: "Run frames headless and print timings",
	Long: `Drive a script for a fixed number of frames against an off-screen
canvas. The frame clock advances exactly 1/fps per frame, so scripts see
the same dt every frame; update and draw are timed with the wall clock.

Examples:
  scriptloop bench bounce.js
  scriptloop bench bounce.js --frames 5000 --overlay`,
	Args: cobra.ExactArgs(1),
	Run:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagFrames, "frames", 600, "Number of frames to run")
	benchCmd.Flags().BoolVar(&flagOverlay, "overlay", false, "Draw the timing overlay every frame")
	benchCmd.Flags().IntVar(&flagWidth, "width", 80, "Off-screen width in cells")
	benchCmd.Flags().IntVar(&flagHeight, "height", 24, "Off-screen height in cells")
}

func runBench(_ *cobra.Command, args []string) {
	path := args[0]
	src := readScript(path)
	name := scriptName(path)

	if flagFrames < 1 {
		fmt.Fprintln(os.Stderr, "Error: --frames must be at least 1")
		os.Exit(1)
	}

	display := displayConfig(flagWidth, flagHeight)
	screen := core.NewScreen(display.ScreenW, display.ScreenH)
	canvas := core.NewPixelCanvas(screen, display.CellW, display.CellH)
	clock := core.NewManualClock()

	rt, err := script.New(script.Options{
		Host:         registry.Host{Canvas: canvas, Clock: clock},
		Logger:       log.Default(),
		CallTimeout:  cfg.Script.CallTimeout,
		MaxCallDepth: cfg.Script.MaxCallDepth,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	d := driver.New(driver.Options{
		Runtime: rt,
		Canvas:  canvas,
		Clock:   clock,
	})
	if err := d.Load(name, src); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	started := time.Now()
	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagOverlay {
		d.ToggleDebug()
	}

	dt := 1 / float64(cfg.Loop.FPS)
	for i := 0; i < flagFrames; i++ {
		clock.Advance(dt)
		screen.Clear()
		d.Tick()
	}
	elapsed := time.Since(started)

	st := d.Stats()
	printBench(name, display, st, elapsed, d)

	if store := openStore(); store != nil {
		rec := tui.NewRunRecord(name, "bench", started, st)
		if _, err := store.SaveRun(rec); err != nil {
			log.Warn("could not save run", "error", err)
		}
		store.Close()
	}
}

func printBench(name string, display core.RuntimeConfig, st driver.Stats, elapsed time.Duration, d *driver.Driver) {
	us := func(seconds float64) float64 { return seconds * 1e6 }
	ms := func(dur time.Duration) float64 { return float64(dur) / float64(time.Millisecond) }

	maxOf := func(p instrument.Phase) float64 {
		var m float64
		for _, v := range d.Samples(p) {
			m = math.Max(m, v)
		}
		return m
	}

	fmt.Printf("Bench - %s\n", name)
	fmt.Println()
	pw, ph := display.PixelSize()
	fmt.Printf("  %-14s  %dx%d px (%dx%d cells)\n", "Screen", pw, ph, display.ScreenW, display.ScreenH)
	fmt.Printf("  %-14s  %d\n", "Frames", st.Ticks)
	fmt.Printf("  %-14s  %.2f ms\n", "Loading time", ms(st.LoadTime))
	fmt.Printf("  %-14s  %.2f ms\n", "Init time", ms(st.InitTime))
	fmt.Printf("  %-14s  %.0fus avg, %.0fus max (last %d)\n", "Update", us(st.AvgUpdate), us(maxOf(instrument.PhaseUpdate)), instrument.Capacity)
	fmt.Printf("  %-14s  %.0fus avg, %.0fus max (last %d)\n", "Draw", us(st.AvgDraw), us(maxOf(instrument.PhaseDraw)), instrument.Capacity)
	fmt.Printf("  %-14s  %d\n", "Faults", st.Faults)
	fmt.Println()

	if perFrame := us(st.AvgUpdate + st.AvgDraw); perFrame > 0 {
		fmt.Printf("Script time allows about %.0f frames per second.\n", 1e6/perFrame)
	}
	fmt.Printf("Wall time %s for %d frames.\n", elapsed.Round(time.Millisecond), st.Ticks)
}
