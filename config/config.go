// Package config loads droidinput settings from an ini file.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/ini.v1"
)

const (
	ModeSu  = "su"
	ModeAdb = "adb"

	DefaultListen = "localhost:12000"
)

// Config holds every setting. Zero values are filled from Default.
type Config struct {
	Listen string
	CORS   bool

	Scale          float64
	CommandTimeout time.Duration
	Mode           string
	SuBinary       string

	Serial string
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		Listen:   DefaultListen,
		Scale:    1.0,
		Mode:     ModeSu,
		SuBinary: "su",
	}
}

// DefaultPath returns ~/.droidinput/config.ini.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.ini"
	}
	return filepath.Join(homeDir, ".droidinput", "config.ini")
}

// LoadOptional is Load for a path that may be absent, such as DefaultPath.
// A missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path on top of the defaults. The file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	server := file.Section("server")
	cfg.Listen = server.Key("listen").MustString(cfg.Listen)
	cfg.CORS = server.Key("cors").MustBool(cfg.CORS)

	input := file.Section("input")
	cfg.Scale = input.Key("scale").MustFloat64(cfg.Scale)
	cfg.CommandTimeout = input.Key("command_timeout").MustDuration(cfg.CommandTimeout)
	cfg.Mode = input.Key("mode").In(cfg.Mode, []string{ModeSu, ModeAdb})
	cfg.SuBinary = input.Key("su_binary").MustString(cfg.SuBinary)

	cfg.Serial = file.Section("device").Key("serial").String()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values a file or flag could have set badly.
func (c Config) Validate() error {
	if c.Scale <= 0 || math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) {
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative, got %s", c.CommandTimeout)
	}
	if c.Mode != ModeSu && c.Mode != ModeAdb {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeSu, ModeAdb, c.Mode)
	}
	return nil
}
