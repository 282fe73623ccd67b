package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load loads the host configuration.
// Search order: customPath -> ~/.scriptloop/config.yaml -> ~/.scriptloop/config.toml ->
// ./configs/scriptloop.yaml -> embedded default
// Files ending in .toml are read as TOML, everything else as YAML.
// Fields missing from a file keep their default values.
func Load(customPath string) (Config, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := unmarshal(customPath, data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		cfg.Normalize()
		return cfg, nil
	}

	// Try user config directory
	for _, name := range []string{"config.yaml", "config.toml"} {
		if userCfgPath := userConfigPath(name); userCfgPath != "" {
			if data, err := os.ReadFile(userCfgPath); err == nil {
				if parsed, ok := parse(userCfgPath, data); ok {
					return parsed, nil
				}
			}
		}
	}

	// Try local configs directory
	localPath := filepath.Join("configs", "scriptloop.yaml")
	if data, err := os.ReadFile(localPath); err == nil {
		if parsed, ok := parse(localPath, data); ok {
			return parsed, nil
		}
	}

	// Use embedded default YAML
	if parsed, ok := parse("scriptloop.yaml", defaultYAML); ok {
		return parsed, nil
	}
	return cfg, nil // Fallback to hardcoded if embed fails
}

func parse(path string, data []byte) (Config, bool) {
	cfg := Default()
	if err := unmarshal(path, data, &cfg); err != nil {
		return Config{}, false
	}
	cfg.Normalize()
	return cfg, true
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".scriptloop", filename)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// DataDir returns ~/.scriptloop, where logs, run history and host keys live.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scriptloop"
	}
	return filepath.Join(home, ".scriptloop")
}
