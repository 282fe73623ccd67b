package tui

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/scriptloop/internal/core"
	"github.com/vovakirdan/scriptloop/internal/script"
)

func TestNewSSHServer(t *testing.T) {
	dir := t.TempDir()
	prog, err := script.Compile("served.js", counterScript)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	cfg := SSHServerConfig{
		Address:     "127.0.0.1:0",
		HostKeyPath: filepath.Join(dir, "keys", "host_key"),
		DBPath:      filepath.Join(dir, "runs.db"),
		Display:     core.DefaultConfig(),
		Logger:      log.New(io.Discard),
	}

	srv, err := NewSSHServer(cfg, prog)
	if err != nil {
		t.Fatalf("NewSSHServer() failed: %v", err)
	}

	if srv.Addr() != cfg.Address {
		t.Errorf("Addr() = %q, expected %q", srv.Addr(), cfg.Address)
	}
	if srv.store == nil {
		t.Error("run database should be open")
	}
	if _, err := os.Stat(cfg.HostKeyPath); err != nil {
		t.Errorf("host key not created: %v", err)
	}

	if err := srv.Shutdown(); err != nil {
		t.Errorf("Shutdown() = %v, expected nil", err)
	}
}
