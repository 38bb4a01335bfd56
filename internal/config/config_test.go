package config

import (
	"path/filepath"
	"testing"
)

func env(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"SCOREKEEPER_DATA_DIR": "/tmp/sk"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != filepath.Join("/tmp/sk", DefaultDBName) {
		t.Errorf("DBPath = %s", cfg.DBPath)
	}
	if cfg.HTTPPort != DefaultHTTPPort || cfg.MaxPlayers != 12 {
		t.Errorf("port/max = %d/%d", cfg.HTTPPort, cfg.MaxPlayers)
	}
	if cfg.Bounds.Min != -10000 || cfg.Bounds.Max != 10000 {
		t.Errorf("bounds = %+v", cfg.Bounds)
	}
	if cfg.APIToken != "" || cfg.TokenFallbackPath() != filepath.Join("/tmp/sk", TokenFileName) {
		t.Errorf("token = %q, fallback = %s", cfg.APIToken, cfg.TokenFallbackPath())
	}
}

func TestTokenOverride(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"SCOREKEEPER_DATA_DIR": "/d", "SCOREKEEPER_API_TOKEN": " abc "}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIToken != "abc" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
}

func TestOverridesAndFallbacks(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		port int
		max  int
		db   string
	}{
		{"explicit", map[string]string{"SCOREKEEPER_HTTP_PORT": "9000", "SCOREKEEPER_MAX_PLAYERS": "6", "SCOREKEEPER_DB": "/x/y.db"}, 9000, 6, "/x/y.db"},
		{"api disabled", map[string]string{"SCOREKEEPER_HTTP_PORT": "0"}, 0, 12, ""},
		{"garbage", map[string]string{"SCOREKEEPER_HTTP_PORT": "abc", "SCOREKEEPER_MAX_PLAYERS": "1"}, DefaultHTTPPort, 12, ""},
		{"port out of range", map[string]string{"SCOREKEEPER_HTTP_PORT": "70000"}, DefaultHTTPPort, 12, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["SCOREKEEPER_DATA_DIR"] = "/data"
			cfg, err := LoadFrom(env(tt.env))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.HTTPPort != tt.port || cfg.MaxPlayers != tt.max {
				t.Errorf("port/max = %d/%d, want %d/%d", cfg.HTTPPort, cfg.MaxPlayers, tt.port, tt.max)
			}
			want := tt.db
			if want == "" {
				want = filepath.Join("/data", DefaultDBName)
			}
			if cfg.DBPath != want {
				t.Errorf("DBPath = %s, want %s", cfg.DBPath, want)
			}
		})
	}
}

func TestInvertedBounds(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{
		"SCOREKEEPER_DATA_DIR":  "/data",
		"SCOREKEEPER_SCORE_MIN": "50",
		"SCOREKEEPER_SCORE_MAX": "10",
	}))
	if err == nil {
		t.Fatal("expected an error for min > max")
	}
}
