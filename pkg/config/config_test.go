package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig with missing file failed: %v", err)
	}

	if cfg.Host != "localhost" {
		t.Errorf("Expected default host localhost, got %q", cfg.Host)
	}
	if cfg.Port != 8001 {
		t.Errorf("Expected default port 8001, got %d", cfg.Port)
	}
	if cfg.DatabasePath == "" {
		t.Error("Expected a default database path")
	}
	if cfg.MaintenanceInterval.Duration != time.Hour {
		t.Errorf("Expected default maintenance interval 1h, got %v", cfg.MaintenanceInterval)
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("Expected default CORS origins")
	}
	if cfg.Addr() != "localhost:8001" {
		t.Errorf("Unexpected Addr: %q", cfg.Addr())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `database_path = '` + filepath.Join(dir, "events.db") + `'
host = '0.0.0.0'
port = 9090
cors_origins = ['https://events.example.com']
debug = true
maintenance_interval = '30m'
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %q", cfg.Host)
	}
	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.MaintenanceInterval.Duration != 30*time.Minute {
		t.Errorf("Expected maintenance interval 30m, got %v", cfg.MaintenanceInterval)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://events.example.com" {
		t.Errorf("Unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("EVENTFINDER_HOST", "127.0.0.1")
	t.Setenv("EVENTFINDER_PORT", "7777")
	t.Setenv("EVENTFINDER_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("EVENTFINDER_DEBUG", "true")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected env host override, got %q", cfg.Host)
	}
	if cfg.Port != 7777 {
		t.Errorf("Expected env port override, got %d", cfg.Port)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("Expected trimmed comma-split origins, got %v", cfg.CORSOrigins)
	}
	if !cfg.Debug {
		t.Error("Expected env debug override")
	}
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("EVENTFINDER_PORT", "70000")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected out-of-range port to be rejected")
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	original := &Config{
		DatabasePath:        filepath.Join(dir, "events.db"),
		Host:                "localhost",
		Port:                8001,
		CORSOrigins:         []string{"http://localhost:8000"},
		MaintenanceInterval: Duration{2 * time.Hour},
	}
	if err := original.SaveConfig(configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.DatabasePath != original.DatabasePath {
		t.Errorf("Database path did not round-trip: %q", cfg.DatabasePath)
	}
	if cfg.MaintenanceInterval.Duration != 2*time.Hour {
		t.Errorf("Maintenance interval did not round-trip: %v", cfg.MaintenanceInterval)
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	dbPath := filepath.Join(dir, "events.db")

	cfg := &Config{DatabasePath: dbPath}
	if err := cfg.SaveTemplateConfig(configPath); err != nil {
		t.Fatalf("SaveTemplateConfig failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read template config: %v", err)
	}
	if !strings.Contains(string(data), dbPath) {
		t.Error("Expected template to contain the database path")
	}

	// The template parses as a valid configuration.
	if _, err := LoadConfig(configPath); err != nil {
		t.Fatalf("Template config did not load: %v", err)
	}
}

func TestGetDefaultStorageDir(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	dir, err := GetDefaultStorageDir()
	if err != nil {
		t.Fatalf("GetDefaultStorageDir failed: %v", err)
	}
	if dir != filepath.Join(dataHome, "eventfinder") {
		t.Errorf("Unexpected storage dir: %q", dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected storage dir to be created: %v", err)
	}
}
