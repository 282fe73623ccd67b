package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/scriptloop/internal/config"
	"github.com/vovakirdan/scriptloop/internal/platform/tui"
	"github.com/vovakirdan/scriptloop/internal/script"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve <script.js>",
	Short: "Serve a script over SSH",
	Long: `Start an SSH server that runs the given script for every connection.

The script is compiled once. Each SSH session gets its own script
runtime, screen and timing overlay, sized to the client's terminal.
Every session's run is recorded in the run database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.scriptloop/host_key

Examples:
  scriptloop serve bounce.js                      # Listen on :23235
  scriptloop serve bounce.js --ssh :2222          # Listen on port 2222
  scriptloop serve bounce.js --host-key ./my_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.ExactArgs(1),
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config, :23235)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (default from config)")
}

func runServe(_ *cobra.Command, args []string) {
	path := args[0]

	prog, err := script.Compile(scriptName(path), readScript(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srvCfg := tui.SSHServerConfig{
		Address:      cfg.Serve.Address,
		HostKeyPath:  cfg.Serve.HostKeyPath,
		DBPath:       cfg.Storage.Path,
		IdleTimeout:  cfg.Serve.IdleTimeout,
		Display:      displayConfig(0, 0),
		CallTimeout:  cfg.Script.CallTimeout,
		MaxCallDepth: cfg.Script.MaxCallDepth,
		InputHold:    cfg.Input.Hold,
		DebugKey:     cfg.Loop.DebugKey,
		Logger:       log.Default().WithPrefix("scriptloop-ssh"),
	}
	if flagSSHAddr != "" {
		srvCfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		srvCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	}

	if srvCfg.HostKeyPath, err = config.ExpandHome(srvCfg.HostKeyPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	server, err := tui.NewSSHServer(srvCfg, prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	port := srvCfg.Address[strings.LastIndex(srvCfg.Address, ":")+1:]
	fmt.Printf("Serving %s over SSH on %s\n", prog.Name(), srvCfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
