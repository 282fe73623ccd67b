package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInitLevels(t *testing.T) {
	tests := []struct {
		debug     bool
		wantDebug bool
	}{
		{false, false},
		{true, true},
	}

	for _, tc := range tests {
		var buf bytes.Buffer
		l := Init(&buf, Options{Debug: tc.debug, NoColor: true})

		l.Debug("debug line")
		l.Info("info line", "script", "game.js")

		out := buf.String()
		if got := strings.Contains(out, "debug line"); got != tc.wantDebug {
			t.Errorf("Debug=%v: debug output present = %v, expected %v", tc.debug, got, tc.wantDebug)
		}
		if !strings.Contains(out, "info line") || !strings.Contains(out, "script=game.js") {
			t.Errorf("info output = %q", out)
		}
		if !strings.Contains(out, "scriptloop") {
			t.Errorf("output %q is missing the prefix", out)
		}
		if strings.Contains(out, "\x1b[") {
			t.Errorf("NoColor output contains escape codes: %q", out)
		}
		if log.Default() != l {
			t.Error("Init() did not install the default logger")
		}
	}
}

func TestOpenFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "scriptloop.log")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString("hello\n"); err != nil {
		t.Errorf("write failed: %v", err)
	}
}
