package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("host = %q, want localhost", cfg.Server.Host)
	}
	if cfg.Server.Port != 8084 {
		t.Errorf("port = %d, want 8084", cfg.Server.Port)
	}
	if cfg.Events.Source != SourceCSV {
		t.Errorf("source = %q, want %q", cfg.Events.Source, SourceCSV)
	}
	if cfg.Events.CSVFile != "events.csv" {
		t.Errorf("csv file = %q, want events.csv", cfg.Events.CSVFile)
	}
	if cfg.Logger.Level != "info" || cfg.Logger.Format != "json" {
		t.Errorf("logger defaults = %q/%q, want info/json", cfg.Logger.Level, cfg.Logger.Format)
	}
	if !cfg.Security.EnableRateLimit {
		t.Error("rate limiting should default on")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `server:
  host: 0.0.0.0
  port: 9090
events:
  source: sqlite
  sqlite_path: events.db
logger:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Events.Source != SourceSQLite {
		t.Errorf("source = %q, want sqlite", cfg.Events.Source)
	}
	if cfg.Events.SQLitePath != "events.db" {
		t.Errorf("sqlite path = %q, want events.db", cfg.Events.SQLitePath)
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "text" {
		t.Errorf("logger = %q/%q, want debug/text", cfg.Logger.Level, cfg.Logger.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("read timeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("no-such-config.yaml"); err == nil {
		t.Error("Load() with missing file should error")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	content := "server:\n  port: 9090\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("EVENTS_CSV_FILE", "other.csv")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("env should beat file, port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Events.CSVFile != "other.csv" {
		t.Errorf("csv file = %q, want other.csv", cfg.Events.CSVFile)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Logger.Level)
	}
	if len(cfg.Security.AllowedOrigins) != 2 || cfg.Security.AllowedOrigins[0] != "https://a.example" {
		t.Errorf("allowed origins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SERVER_PORT": "70000"}},
		{"bad source", map[string]string{"EVENTS_SOURCE": "kafka"}},
		{"sqlite without path", map[string]string{"EVENTS_SOURCE": "sqlite"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"bad rate limit", map[string]string{"SECURITY_RATE_LIMIT_RPS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Errorf("Load() should reject %s", tt.name)
			}
		})
	}
}

func TestConfig_Address(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Address(); got != "localhost:8084" {
		t.Errorf("Address() = %q, want localhost:8084", got)
	}
}
