// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MJE43/scorekeeper-desktop/internal/scoring"
)

const (
	AppDirName      = "scorekeeper-desktop"
	DefaultDBName   = "scorekeeper.db"
	DefaultHTTPPort = 17889
	TokenFileName   = "api-token"
)

// Config holds every tunable the application reads at startup.
type Config struct {
	DataDir    string
	DBPath     string
	HTTPPort   int    // 0 disables the loopback API
	APIToken   string // overrides the keychain-stored token
	Bounds     scoring.Bounds
	MaxPlayers int
}

// Getenv matches os.Getenv so tests can supply a fixed environment.
type Getenv func(string) string

// Load reads the process environment.
func Load() (Config, error) { return LoadFrom(os.Getenv) }

// LoadFrom reads settings through getenv. Unparseable values fall back to
// their defaults; inconsistent score bounds are an error.
func LoadFrom(getenv Getenv) (Config, error) {
	cfg := Config{
		DataDir:    strings.TrimSpace(getenv("SCOREKEEPER_DATA_DIR")),
		DBPath:     strings.TrimSpace(getenv("SCOREKEEPER_DB")),
		HTTPPort:   envInt(getenv, "SCOREKEEPER_HTTP_PORT", DefaultHTTPPort),
		APIToken:   strings.TrimSpace(getenv("SCOREKEEPER_API_TOKEN")),
		MaxPlayers: envInt(getenv, "SCOREKEEPER_MAX_PLAYERS", 12),
		Bounds: scoring.Bounds{
			Min: envInt(getenv, "SCOREKEEPER_SCORE_MIN", scoring.DefaultBounds.Min),
			Max: envInt(getenv, "SCOREKEEPER_SCORE_MAX", scoring.DefaultBounds.Max),
		},
	}
	if cfg.DataDir == "" {
		cfg.DataDir = AppDataDir()
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, DefaultDBName)
	}
	if cfg.HTTPPort < 0 || cfg.HTTPPort > 65535 {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.MaxPlayers < 2 {
		cfg.MaxPlayers = 12
	}
	if cfg.Bounds.Min > cfg.Bounds.Max {
		return cfg, fmt.Errorf("score bounds: min %d is greater than max %d", cfg.Bounds.Min, cfg.Bounds.Max)
	}
	return cfg, nil
}

// TokenFallbackPath is where the API token is kept when the OS keyring is
// unavailable.
func (c Config) TokenFallbackPath() string { return filepath.Join(c.DataDir, TokenFileName) }

// AppDataDir returns an OS-appropriate writable directory.
func AppDataDir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, AppDirName)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, "."+AppDirName)
	}
	return "."
}

func envInt(getenv Getenv, k string, def int) int {
	if s := strings.TrimSpace(getenv(k)); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}
