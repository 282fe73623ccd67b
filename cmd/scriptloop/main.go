// scriptloop runs JavaScript programs inside a fixed-rate frame loop in the
// terminal, with a toggleable timing overlay.
//
// Usage:
//
//	scriptloop run <script.js>     - Run a script in the terminal
//	scriptloop check <script.js>   - Compile and evaluate a script, then report
//	scriptloop bench <script.js>   - Drive a script headless and report timings
//	scriptloop api                 - List the functions scripts can call
//	scriptloop serve <script.js>   - Serve a script over SSH
//	scriptloop runs [script]       - Show recorded runs
//
// Global flags:
//
//	--fps <rate>        - Set frame rate (default: 60)
//	--config <path>     - Use a custom config YAML
//	--db <path>         - Set run database path (default: ~/.scriptloop/runs.db)
//	--log-file <path>   - Where run writes its log (default: ~/.scriptloop/scriptloop.log)
//	--verbose           - Debug logging
//	--no-color          - Plain log output
//	--statsview         - Serve Go runtime charts while running
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptloop/examples"
	"github.com/vovakirdan/scriptloop/internal/config"
	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/logger"
	"github.com/vovakirdan/scriptloop/internal/statsview"
	"github.com/vovakirdan/scriptloop/internal/storage"
)

var (
	// Global flags
	flagFPS       int
	flagConfig    string
	flagDBPath    string
	flagLogFile   string
	flagVerbose   bool
	flagNoColor   bool
	flagStatsview bool

	// cfg is loaded before any subcommand runs.
	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scriptloop",
	Short: "scriptloop - run JavaScript frame loops in your terminal",
	Long: `scriptloop hosts a JavaScript program in a real-time frame loop.
A script may define init(), update(dt) and draw(); the host calls them
every frame and gives the script drawing, input and time functions.
Press F3 while a script runs to show frame timing graphs.

Available commands:
  run      - Run a script in the terminal
  check    - Compile and evaluate a script without running frames
  bench    - Run frames headless and print timings
  api      - List the functions scripts can call
  serve    - Start SSH server that runs a script per session
  runs     - View recorded runs

Examples:
  scriptloop run demo:bounce.js
  scriptloop run examples/snake.js --fps 30
  scriptloop bench demo:bounce.js --frames 1000
  scriptloop serve examples/bounce.js --ssh :2222
  scriptloop runs bounce.js`,
	PersistentPreRunE: loadSettings,
	SilenceUsage:      true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Frame rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file used by run (default ~/.scriptloop/scriptloop.log)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored log output")
	rootCmd.PersistentFlags().BoolVar(&flagStatsview, "statsview", false, "Serve Go runtime charts on "+statsview.DefaultAddress)

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadSettings loads the config file and applies flag overrides.
func loadSettings(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	if cmd.Flags().Changed("fps") {
		cfg.Loop.FPS = flagFPS
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	cfg.Normalize()

	logger.Init(os.Stderr, logger.Options{Debug: flagVerbose, NoColor: flagNoColor})

	if flagStatsview {
		statsview.Launch(os.Stderr, statsview.DefaultAddress)
	}
	return nil
}

// fileLogger sends logs to the log file so they stay off the TUI.
// The returned close func is always safe to call.
func fileLogger() (*log.Logger, func()) {
	path := flagLogFile
	if path == "" {
		path = filepath.Join(config.DataDir(), "scriptloop.log")
	}
	path, err := config.ExpandHome(path)
	if err != nil {
		return logger.Init(io.Discard, logger.Options{}), func() {}
	}

	f, err := logger.OpenFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open log file: %v\n", err)
		return logger.Init(io.Discard, logger.Options{}), func() {}
	}
	//nolint:errcheck // Best-effort close on exit
	return logger.Init(f, logger.Options{Debug: flagVerbose, NoColor: true}), func() { f.Close() }
}

// openStore opens the run database. Runs still work without it.
func openStore() *storage.Store {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Warn("could not open run database", "path", cfg.Storage.Path, "error", err)
		return nil
	}
	return store
}

// displayConfig builds the host geometry for a width x height cell screen.
func displayConfig(width, height int) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		CellW:    cfg.Display.CellWidth,
		CellH:    cfg.Display.CellHeight,
		TickRate: cfg.Loop.FPS,
	}
}

// scriptName is the name a script is compiled and recorded under.
func scriptName(path string) string {
	return filepath.Base(strings.TrimPrefix(path, demoPrefix))
}

// demoPrefix selects an embedded demo script instead of a file.
const demoPrefix = "demo:"

// readScript reads a script file, or a demo named "demo:<name>", exiting
// on failure.
func readScript(path string) string {
	if name, ok := strings.CutPrefix(path, demoPrefix); ok {
		src, err := examples.Source(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: unknown demo %q (have %s)\n", name, strings.Join(examples.Names(), ", "))
			os.Exit(1)
		}
		return src
	}

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read script: %v\n", err)
		os.Exit(1)
	}
	return string(src)
}
