package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/scriptloop/internal/platform/tui"
	"github.com/vovakirdan/scriptloop/internal/storage"
)

var (
	flagLimit  int
	flagBrowse bool
	flagClear  bool
	flagRunID  int64
)

var runsCmd = &cobra.Command{
	Use:   "runs [script]",
	Short: "Show recorded runs",
	Long: `Display recent run summaries, newest first. With a script name only
that script's runs are shown.

Examples:
  scriptloop runs
  scriptloop runs bounce.js --limit 20
  scriptloop runs --browse
  scriptloop runs --id 12
  scriptloop runs bounce.js --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	runsCmd.Flags().BoolVar(&flagBrowse, "browse", false, "Browse runs interactively")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete recorded runs")
	runsCmd.Flags().Int64Var(&flagRunID, "id", 0, "Show one run in detail")
}

func runRuns(_ *cobra.Command, args []string) {
	var name string
	if len(args) == 1 {
		name = scriptName(args[0])
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagRunID > 0:
		printRun(store, flagRunID)

	case flagClear:
		if err := store.ClearRuns(name); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			store.Close()
			os.Exit(1)
		}
		fmt.Println("Runs cleared.")

	case flagBrowse:
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunBrowser(store, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			store.Close()
			os.Exit(1)
		}

	default:
		printRuns(store, name)
	}
}

func printRuns(store *storage.Store, name string) {
	runs, err := store.RecentRuns(name, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		store.Close()
		os.Exit(1)
	}

	title := "all scripts"
	if name != "" {
		title = name
	}
	fmt.Printf("Recent runs - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'scriptloop run <script.js>' to record one.")
		return
	}

	fmt.Printf("  %-5s  %-16s  %-12s  %7s  %5s  %10s  %10s  %6s  %s\n",
		"ID", "Script", "Origin", "Frames", "FPS", "Update", "Draw", "Faults", "Date")
	for _, r := range runs {
		fmt.Printf("  %-5d  %-16s  %-12s  %7d  %5.0f  %8.3fms  %8.3fms  %6d  %s\n",
			r.ID, r.Script, r.Origin, r.Ticks, r.FPS(), r.AvgUpdateMs, r.AvgDrawMs, r.Faults,
			r.StartedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if count, err := store.RunCount(name); err == nil {
		fmt.Printf("Total: %s\n", humanize.Comma(int64(count)))
	}
}

func printRun(store *storage.Store, id int64) {
	r, err := store.RunByID(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving run: %v\n", err)
		store.Close()
		os.Exit(1)
	}
	if r == nil {
		fmt.Fprintf(os.Stderr, "Error: no run with id %d\n", id)
		store.Close()
		os.Exit(1)
	}

	fmt.Printf("Run %d - %s\n", r.ID, r.Script)
	fmt.Println()
	fmt.Printf("  %-14s  %s\n", "Origin", r.Origin)
	fmt.Printf("  %-14s  %s (%s)\n", "Started", r.StartedAt.Format("2006-01-02 15:04:05"), humanize.Time(r.StartedAt))
	fmt.Printf("  %-14s  %s\n", "Frames", humanize.Comma(int64(r.Ticks)))
	fmt.Printf("  %-14s  %.0f\n", "FPS", r.FPS())
	fmt.Printf("  %-14s  %.2f ms\n", "Loading time", r.LoadMs)
	fmt.Printf("  %-14s  %.2f ms\n", "Init time", r.InitMs)
	fmt.Printf("  %-14s  %.3f ms\n", "Frame", r.AvgFrameMs)
	fmt.Printf("  %-14s  %.3f ms\n", "Update", r.AvgUpdateMs)
	fmt.Printf("  %-14s  %.3f ms\n", "Draw", r.AvgDrawMs)
	fmt.Printf("  %-14s  %d\n", "Faults", r.Faults)
}
