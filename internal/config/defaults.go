package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/scriptloop.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Loop: LoopConfig{
			FPS:      60,
			DebugKey: "f3",
		},
		Script: ScriptConfig{
			MaxCallDepth: 1024,
		},
		Display: DisplayConfig{
			CellWidth:  8,
			CellHeight: 16,
		},
		Input: InputConfig{
			Hold: 150 * time.Millisecond,
		},
		Storage: StorageConfig{
			Path: "~/.scriptloop/runs.db",
		},
		Serve: ServeConfig{
			Address:     ":23235",
			IdleTimeout: 30 * time.Minute,
		},
	}
}
