package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/scriptloop/internal/platform/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <script.js>",
	Short: "Run a script",
	Long: `Load a script, call its init() once, then call update(dt) and draw()
every frame until you quit.

Controls:
  Arrows/WASD  - Held keys, read by is_key_down()
  Space        - Space key
  F3           - Toggle the timing overlay (see loop.debug_key)
  Ctrl+S       - Save a text screenshot
  ?            - Show key help
  Q/Esc        - Quit

Logs go to ~/.scriptloop/scriptloop.log unless --log-file is set.

Examples:
  scriptloop run bounce.js
  scriptloop run bounce.js --fps 30`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func runRun(_ *cobra.Command, args []string) {
	path := args[0]
	src := readScript(path)

	logger, closeLog := fileLogger()
	defer closeLog()

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	started := time.Now()
	session, err := tui.NewSession(tui.SessionOptions{
		Name:         scriptName(path),
		Source:       src,
		Config:       displayConfig(width, height),
		CallTimeout:  cfg.Script.CallTimeout,
		MaxCallDepth: cfg.Script.MaxCallDepth,
		InputHold:    cfg.Input.Hold,
		DebugKey:     cfg.Loop.DebugKey,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		closeLog()
		os.Exit(1)
	}

	runErr := tui.Run(session)

	// Record the run before a potential exit
	if store := openStore(); store != nil {
		rec := tui.NewRunRecord(session.Script, "local", started, session.Driver.Stats())
		if _, saveErr := store.SaveRun(rec); saveErr != nil {
			logger.Warn("could not save run", "error", saveErr)
		}
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running script: %v\n", runErr)
		closeLog()
		os.Exit(1)
	}
}
