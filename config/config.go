// Package config loads server configuration from an optional
// config.json file, then environment variable overrides, following the
// teacher's layered-defaults convention.
package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
)

// Config holds every configurable parameter of the board server.
type Config struct {
	// Port is loaded from config.json or PORT, but cmd/server does not
	// read it: the listen port comes from the server's first argument,
	// where 0 means DefaultPort.
	Port int `json:"port"`
	// FlipWaitSec bounds how long rule 1-D contention waits before a
	// flip fails with a timeout (§4.3, §5).
	FlipWaitSec int `json:"flip_wait_sec"`
	// WatchTimeoutSec bounds how long a watch call waits for a version
	// advance before returning the current snapshot (§4.7).
	WatchTimeoutSec int `json:"watch_timeout_sec"`
	// StaticDir serves the index route's static assets, e.g. the
	// board's browser client (§6's "static file served at the index
	// route" collaborator).
	StaticDir string `json:"static_dir"`
	// DatabaseURL, if set, enables telemetry persistence (renewals,
	// player activity). Empty disables it entirely.
	DatabaseURL string `json:"database_url"`
	// AuthIssuerURL, if set, enables the JWT-gated admin surface.
	// Empty disables /admin/* with a 503.
	AuthIssuerURL string `json:"auth_issuer_url"`

	// BoardRows/BoardCols size a freshly generated board for tools
	// that don't load one from a file (e.g. the simulation harness).
	BoardRows int `json:"board_rows"`
	BoardCols int `json:"board_cols"`
}

// DefaultPort is used when the port CLI argument is 0 (§6.4).
const DefaultPort = 8080

// DefaultFlipWaitSec and DefaultWatchTimeoutSec match board.DefaultFlipWait.
const (
	DefaultFlipWaitSec     = 30
	DefaultWatchTimeoutSec = 30
)

// Defaults returns a Config with every field set to its default value.
func Defaults() *Config {
	return &Config{
		Port:            DefaultPort,
		FlipWaitSec:     DefaultFlipWaitSec,
		WatchTimeoutSec: DefaultWatchTimeoutSec,
		StaticDir:       "public",
		BoardRows:       4,
		BoardCols:       4,
	}
}

// Load reads configuration from an optional config.json file, then
// applies environment variable overrides. Fields not set in either
// source retain their default values. Callers are expected to have
// already called godotenv.Load (see cmd/server/main.go).
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "error", err)
		}
	}

	overrideInt(&cfg.Port, "PORT")
	overrideInt(&cfg.FlipWaitSec, "FLIP_WAIT_SEC")
	overrideInt(&cfg.WatchTimeoutSec, "WATCH_TIMEOUT_SEC")
	overrideInt(&cfg.BoardRows, "BOARD_ROWS")
	overrideInt(&cfg.BoardCols, "BOARD_COLS")
	overrideString(&cfg.StaticDir, "STATIC_DIR")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthIssuerURL, "AUTH_ISSUER_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid environment override", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
