package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/registry"
	"github.com/vovakirdan/scriptloop/internal/script"
)

var checkCmd = &cobra.Command{
	Use:   "check <script.js>",
	Short: "Compile and evaluate a script",
	Long: `Compile a script and run its top level against an off-screen canvas,
then list which callbacks it defines. No frames are run and init() is
not called.

Exits non-zero on a syntax error or a top-level exception.

Examples:
  scriptloop check bounce.js`,
	Args: cobra.ExactArgs(1),
	Run:  runCheck,
}

func runCheck(_ *cobra.Command, args []string) {
	path := args[0]
	src := readScript(path)
	name := scriptName(path)

	start := time.Now()
	prog, err := script.Compile(name, src)
	compileTime := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	display := displayConfig(80, 24)
	screen := core.NewScreen(display.ScreenW, display.ScreenH)
	rt, err := script.New(script.Options{
		Host: registry.Host{
			Canvas: core.NewPixelCanvas(screen, display.CellW, display.CellH),
			Clock:  core.NewMonotonicClock(),
		},
		Logger:       log.Default(),
		CallTimeout:  cfg.Script.CallTimeout,
		MaxCallDepth: cfg.Script.MaxCallDepth,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	start = time.Now()
	if err := rt.Install(prog); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	evalTime := time.Since(start)

	defined := rt.Defined()
	names := make([]string, len(defined))
	for i, cb := range defined {
		names[i] = cb.String()
	}
	if len(names) == 0 {
		names = append(names, "none")
	}

	fmt.Printf("%s: ok\n", name)
	fmt.Println()
	fmt.Printf("  %-10s  %.2f ms\n", "Compile", float64(compileTime)/float64(time.Millisecond))
	fmt.Printf("  %-10s  %.2f ms\n", "Evaluate", float64(evalTime)/float64(time.Millisecond))
	fmt.Printf("  %-10s  %s\n", "Callbacks", strings.Join(names, ", "))
}
