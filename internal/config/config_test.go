package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("Expected environment 'development', got %q", cfg.Environment)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("Expected info level, got %v", cfg.LogLevel)
	}
	if cfg.SaveBackend != BackendNone {
		t.Errorf("Expected save backend 'none', got %q", cfg.SaveBackend)
	}
	if cfg.SaveTTL != 24*time.Hour {
		t.Errorf("Expected 24h TTL, got %v", cfg.SaveTTL)
	}
	if cfg.Catalog != "" || cfg.SessionID != "" || cfg.RandomSeed != 0 {
		t.Errorf("Expected empty optional settings, got %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("CATALOG", "town.yaml")
	t.Setenv("SAVE_BACKEND", "SQLite")
	t.Setenv("SAVE_TTL", "90m")
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("Expected warn level, got %v", cfg.LogLevel)
	}
	if cfg.SaveBackend != BackendSQLite {
		t.Errorf("Expected sqlite backend, got %q", cfg.SaveBackend)
	}
	if cfg.DataDir != "/srv/data" || cfg.Catalog != "town.yaml" {
		t.Errorf("Unexpected paths: %q %q", cfg.DataDir, cfg.Catalog)
	}
	if cfg.SaveTTL != 90*time.Minute {
		t.Errorf("Expected 90m TTL, got %v", cfg.SaveTTL)
	}
	if cfg.RandomSeed != 42 {
		t.Errorf("Expected seed 42, got %d", cfg.RandomSeed)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		expect string
	}{
		{"bad duration", "SAVE_TTL", "soon", "parse env:"},
		{"bad seed", "RANDOM_SEED", "-1", "parse env:"},
		{"unknown backend", "SAVE_BACKEND", "postgres", "unknown SAVE_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.expect) {
				t.Errorf("expected %q in %v", tt.expect, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
