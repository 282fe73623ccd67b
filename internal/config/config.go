// Package config provides YAML and TOML configuration loading for the script
// host: frame rate, display geometry, input timing, storage and SSH serving.
package config

import "time"

// Config is the complete host configuration.
type Config struct {
	Loop    LoopConfig    `yaml:"loop" toml:"loop"`
	Script  ScriptConfig  `yaml:"script" toml:"script"`
	Display DisplayConfig `yaml:"display" toml:"display"`
	Input   InputConfig   `yaml:"input" toml:"input"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Serve   ServeConfig   `yaml:"serve" toml:"serve"`
}

// LoopConfig defines frame pacing.
type LoopConfig struct {
	FPS      int    `yaml:"fps" toml:"fps"`
	DebugKey string `yaml:"debug_key" toml:"debug_key"` // key that toggles the timing overlay
}

// ScriptConfig defines script execution limits.
type ScriptConfig struct {
	CallTimeout  time.Duration `yaml:"call_timeout" toml:"call_timeout"`     // 0 disables the watchdog
	MaxCallDepth int           `yaml:"max_call_depth" toml:"max_call_depth"` // deepest script recursion
}

// DisplayConfig defines how script pixels map onto terminal cells.
type DisplayConfig struct {
	CellWidth  int `yaml:"cell_width" toml:"cell_width"`
	CellHeight int `yaml:"cell_height" toml:"cell_height"`
}

// InputConfig defines key state timing.
type InputConfig struct {
	Hold time.Duration `yaml:"hold" toml:"hold"` // how long a key press counts as held
}

// StorageConfig defines where run history is kept.
type StorageConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// ServeConfig defines the SSH server.
type ServeConfig struct {
	Address     string        `yaml:"address" toml:"address"`
	HostKeyPath string        `yaml:"host_key_path" toml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
}

// Limits for Normalize.
const (
	MinFPS = 1
	MaxFPS = 240
)

// Normalize fills unset fields from Default and clamps the frame rate.
func (c *Config) Normalize() {
	def := Default()

	if c.Loop.FPS <= 0 {
		c.Loop.FPS = def.Loop.FPS
	}
	c.Loop.FPS = clamp(c.Loop.FPS, MinFPS, MaxFPS)
	if c.Loop.DebugKey == "" {
		c.Loop.DebugKey = def.Loop.DebugKey
	}
	if c.Script.CallTimeout < 0 {
		c.Script.CallTimeout = 0
	}
	if c.Script.MaxCallDepth <= 0 {
		c.Script.MaxCallDepth = def.Script.MaxCallDepth
	}
	if c.Display.CellWidth <= 0 {
		c.Display.CellWidth = def.Display.CellWidth
	}
	if c.Display.CellHeight <= 0 {
		c.Display.CellHeight = def.Display.CellHeight
	}
	if c.Input.Hold <= 0 {
		c.Input.Hold = def.Input.Hold
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Serve.Address == "" {
		c.Serve.Address = def.Serve.Address
	}
	if c.Serve.IdleTimeout <= 0 {
		c.Serve.IdleTimeout = def.Serve.IdleTimeout
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
