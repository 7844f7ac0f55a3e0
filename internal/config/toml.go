// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Board  BoardConfig  `toml:"board"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// BoardConfig maps scoreboard settings.
type BoardConfig struct {
	Timezone       *string        `toml:"timezone"`
	Players        []PlayerConfig `toml:"players"`
	UnknownPlayer  *string        `toml:"unknown-player"`
	EditWindowDays *int           `toml:"edit-window-days"`
}

// PlayerConfig binds a display name to a stable seat key.
type PlayerConfig struct {
	Name string `toml:"name"`
	Seat string `toml:"seat"`
}

// StoreConfig maps database settings.
type StoreConfig struct {
	Path    *string   `toml:"path"`
	Timeout *Duration `toml:"timeout"`
	Retries *int      `toml:"retries"`
}

// ServerConfig maps HTTP server settings.
type ServerConfig struct {
	Addr     *string  `toml:"addr"`
	AdminKey *string  `toml:"admin-key"`
	Rate     *float64 `toml:"rate"`
	Burst    *int     `toml:"burst"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// Duration decodes TOML strings like "5s" or "250ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if v < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", string(text))
	}
	d.Duration = v
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
