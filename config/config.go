// Package config holds the TOML-backed settings shared by the assembler
// and emulator CLIs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the full settings tree for both cmd/masm and cmd/memu.
type Config struct {
	Assemble struct {
		FailOnDuplicateLabel bool `toml:"fail_on_duplicate_label"`
	} `toml:"assemble"`

	Emulate struct {
		MaxCycles     uint64 `toml:"max_cycles"`
		DefaultEntry  uint16 `toml:"default_entry"`
		StdinPollMs   uint   `toml:"stdin_poll_ms"`
		DumpOnHalt    bool   `toml:"dump_on_halt"`
	} `toml:"emulate"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
		BytesPerLine  int  `toml:"words_per_line"`
	} `toml:"debugger"`
}

// Default returns the configuration a fresh install runs with.
func Default() *Config {
	cfg := &Config{}

	cfg.Assemble.FailOnDuplicateLabel = true

	cfg.Emulate.MaxCycles = 10_000_000
	cfg.Emulate.DefaultEntry = 0
	cfg.Emulate.StdinPollMs = 10
	cfg.Emulate.DumpOnHalt = true

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.BytesPerLine = 16

	return cfg
}

// Path returns the platform-specific config file path: XDG on Linux and
// macOS, AppData on Windows, falling back to the current directory if
// the home directory can't be resolved.
func Path() string {
	var dir string

	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "m16vm")

	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		dir = filepath.Join(home, ".config", "m16vm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// Load reads the default config file, or Default() if it doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads path, or Default() if it doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes c to path, creating parent directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path is operator-controlled config location
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
