package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Board.Timezone != nil || cfg.Store.Path != nil || len(cfg.Board.Players) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigAllSections(t *testing.T) {
	path := writeConfig(t, `
[board]
timezone = "Europe/Berlin"
unknown-player = "skip"
edit-window-days = 2

[[board.players]]
name = "Ann"
seat = "player1"

[[board.players]]
name = "Bo"
seat = "player2"

[store]
path = "/tmp/scores.db"
timeout = "250ms"
retries = 5

[server]
addr = ":9090"
admin-key = "secret"
rate = 2.5
burst = 4

[log]
level = "debug"
format = "console"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Board.Timezone == nil || *cfg.Board.Timezone != "Europe/Berlin" {
		t.Fatalf("unexpected timezone %v", cfg.Board.Timezone)
	}
	if cfg.Board.UnknownPlayer == nil || *cfg.Board.UnknownPlayer != "skip" {
		t.Fatalf("unexpected unknown-player %v", cfg.Board.UnknownPlayer)
	}
	if cfg.Board.EditWindowDays == nil || *cfg.Board.EditWindowDays != 2 {
		t.Fatalf("unexpected edit window %v", cfg.Board.EditWindowDays)
	}
	if len(cfg.Board.Players) != 2 || cfg.Board.Players[1] != (PlayerConfig{Name: "Bo", Seat: "player2"}) {
		t.Fatalf("unexpected players %+v", cfg.Board.Players)
	}
	if cfg.Store.Timeout == nil || cfg.Store.Timeout.Duration != 250*time.Millisecond {
		t.Fatalf("unexpected timeout %v", cfg.Store.Timeout)
	}
	if cfg.Store.Retries == nil || *cfg.Store.Retries != 5 {
		t.Fatalf("unexpected retries %v", cfg.Store.Retries)
	}
	if cfg.Server.AdminKey == nil || *cfg.Server.AdminKey != "secret" {
		t.Fatalf("unexpected admin key %v", cfg.Server.AdminKey)
	}
	if cfg.Server.Rate == nil || *cfg.Server.Rate != 2.5 || cfg.Server.Burst == nil || *cfg.Server.Burst != 4 {
		t.Fatalf("unexpected rate settings %+v", cfg.Server)
	}
	if cfg.Log.Format == nil || *cfg.Log.Format != "console" {
		t.Fatalf("unexpected log format %v", cfg.Log.Format)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "[store]\ntimeout = \"soon\"\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[board]\ntimezon = \"UTC\"\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "timezon") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "puzzlescore", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "puzzlescore", "puzzlescore.db") {
		t.Fatalf("unexpected db path %q", got)
	}
}
