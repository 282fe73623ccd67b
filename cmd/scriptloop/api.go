package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptloop/internal/registry"
)

var apiCmd = &cobra.Command{
	Use:   "api [function]",
	Short: "List the functions scripts can call",
	Long: `Shows every host function installed into a script's global scope,
or just one of them.

Examples:
  scriptloop api
  scriptloop api draw_circle`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAPI,
}

func runAPI(_ *cobra.Command, args []string) {
	caps := registry.List()

	if len(args) == 1 {
		name := args[0]
		if !registry.Exists(name) {
			fmt.Fprintf(os.Stderr, "Error: unknown function %q\n", name)
			fmt.Fprintln(os.Stderr, "Run 'scriptloop api' to see available functions.")
			os.Exit(1)
		}
		for _, c := range caps {
			if c.Name == name {
				fmt.Printf("%s (%d args)\n  %s\n", c.Name, c.Arity, c.Summary)
			}
		}
		return
	}

	if len(caps) == 0 {
		fmt.Println("No functions registered.")
		return
	}

	fmt.Println("Script functions:")
	fmt.Println()

	// Calculate column widths
	maxNameLen := 4 // "Name" header
	for _, c := range caps {
		if len(c.Name) > maxNameLen {
			maxNameLen = len(c.Name)
		}
	}

	fmt.Printf("  %-*s  %-5s  %s\n", maxNameLen, "Name", "Args", "Usage")
	fmt.Printf("  %-*s  %-5s  %s\n", maxNameLen, "----", "----", "-----")

	for _, c := range caps {
		fmt.Printf("  %-*s  %-5d  %s\n", maxNameLen, c.Name, c.Arity, c.Summary)
	}

	fmt.Println()
	fmt.Println("Colors are [r, g, b, a] arrays with channels from 0 to 255.")
	fmt.Println("Define init(), update(dt) and draw() to hook into the frame loop.")
}
